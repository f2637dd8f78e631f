package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// conflictDateLayout is the French date format used in duplicate messages.
const conflictDateLayout = "02/01/2006"

// FindByIdentity returns the child matching all four identity fields exactly, or nil.
func (s *Service) FindByIdentity(ctx context.Context, id Identity) (*Child, error) {
	id.BirthDate = DateOnly(id.BirthDate)
	c, err := s.store.FindByIdentity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find child by identity: %w", err)
	}
	return c, nil
}

// Enroll adds the requested child to a session, reusing an existing child
// record when one with the same identity already exists.
func (s *Service) Enroll(ctx context.Context, sessionID int64, req ChildRequest) (ChildView, error) {
	var view ChildView
	err := s.store.WithTx(ctx, func(tx Tx) error {
		v, err := enroll(ctx, tx, sessionID, req)
		view = v
		return err
	})
	if err != nil {
		return ChildView{}, err
	}
	return view, nil
}

func enroll(ctx context.Context, tx Tx, sessionID int64, req ChildRequest) (ChildView, error) {
	sess, err := tx.GetSession(ctx, sessionID)
	if err != nil {
		return ChildView{}, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return ChildView{}, sessionNotFound(sessionID)
	}
	if err := validateChildRequest(req); err != nil {
		return ChildView{}, err
	}

	match, err := tx.FindByIdentity(ctx, req.Identity())
	if err != nil {
		return ChildView{}, fmt.Errorf("find child by identity: %w", err)
	}

	if match == nil {
		child, err := tx.SaveChild(ctx, childFromRequest(0, req))
		if err != nil {
			return ChildView{}, fmt.Errorf("save child: %w", err)
		}
		if err := tx.SaveMembership(ctx, Membership{SessionID: sessionID, ChildID: child.ID}); err != nil {
			return ChildView{}, fmt.Errorf("save membership: %w", err)
		}
		return toChildView(child), nil
	}

	// A concurrent removal elsewhere must not orphan-delete the match under us.
	if err := tx.LockChild(ctx, match.ID); err != nil {
		return ChildView{}, fmt.Errorf("lock child: %w", err)
	}

	existing, err := tx.GetMembership(ctx, sessionID, match.ID)
	if err != nil {
		return ChildView{}, fmt.Errorf("get membership: %w", err)
	}
	if existing != nil {
		return ChildView{}, duplicateEnrollment(req)
	}

	if err := tx.SaveMembership(ctx, Membership{SessionID: sessionID, ChildID: match.ID}); err != nil {
		return ChildView{}, fmt.Errorf("save membership: %w", err)
	}
	return toChildView(*match), nil
}

// UpdateMembership edits the child enrolled under (sessionID, childID).
//
// When the new identity belongs to another child not yet in the session, the
// membership is moved to that child and the old record is dropped if it has
// no membership left. The returned view is the child now enrolled.
func (s *Service) UpdateMembership(ctx context.Context, sessionID, childID int64, req ChildRequest) (ChildView, error) {
	var view ChildView
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if err := lockMembership(ctx, tx, sessionID, childID); err != nil {
			return err
		}
		if err := validateChildRequest(req); err != nil {
			return err
		}

		match, err := tx.FindByIdentity(ctx, req.Identity())
		if err != nil {
			return fmt.Errorf("find child by identity: %w", err)
		}

		if match == nil || match.ID == childID {
			updated, err := tx.SaveChild(ctx, childFromRequest(childID, req))
			if err != nil {
				return fmt.Errorf("save child: %w", err)
			}
			view = toChildView(updated)
			return nil
		}

		other, err := tx.GetMembership(ctx, sessionID, match.ID)
		if err != nil {
			return fmt.Errorf("get membership: %w", err)
		}
		if other != nil {
			return duplicateEnrollment(req)
		}

		if err := lockChildren(ctx, tx, childID, match.ID); err != nil {
			return err
		}
		if err := tx.DeleteMembership(ctx, sessionID, childID); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		if err := tx.SaveMembership(ctx, Membership{SessionID: sessionID, ChildID: match.ID}); err != nil {
			return fmt.Errorf("save membership: %w", err)
		}

		remaining, err := tx.CountByChild(ctx, childID)
		if err != nil {
			return fmt.Errorf("count memberships: %w", err)
		}
		if remaining == 0 {
			if err := tx.DeleteChild(ctx, childID); err != nil {
				return fmt.Errorf("delete orphan child: %w", err)
			}
			slog.Debug("orphan child deleted", "child_id", childID, "session_id", sessionID)
		}

		view = toChildView(*match)
		return nil
	})
	if err != nil {
		return ChildView{}, err
	}
	return view, nil
}

// RemoveMembership unenrolls a child, deleting the child when this was its only session.
func (s *Service) RemoveMembership(ctx context.Context, sessionID, childID int64) error {
	return s.store.WithTx(ctx, func(tx Tx) error {
		if err := lockMembership(ctx, tx, sessionID, childID); err != nil {
			return err
		}
		if err := tx.LockChild(ctx, childID); err != nil {
			return fmt.Errorf("lock child: %w", err)
		}

		// Counted before the delete, so the membership being removed is included.
		count, err := tx.CountByChild(ctx, childID)
		if err != nil {
			return fmt.Errorf("count memberships: %w", err)
		}

		if err := tx.DeleteMembership(ctx, sessionID, childID); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}

		if count <= 1 {
			if err := tx.DeleteChild(ctx, childID); err != nil {
				return fmt.Errorf("delete orphan child: %w", err)
			}
			slog.Debug("orphan child deleted", "child_id", childID, "session_id", sessionID)
		}
		return nil
	})
}

// RemoveAllMemberships empties a session and deletes the children it orphans.
func (s *Service) RemoveAllMemberships(ctx context.Context, sessionID int64) error {
	return s.store.WithTx(ctx, func(tx Tx) error {
		sess, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if sess == nil {
			return sessionNotFound(sessionID)
		}
		return clearSession(ctx, tx, sessionID)
	})
}

// clearSession deletes every membership of a session and then the children
// that had no other membership. Orphans are determined before the bulk delete.
func clearSession(ctx context.Context, tx Tx, sessionID int64) error {
	members, err := tx.ListBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list memberships: %w", err)
	}
	if len(members) == 0 {
		return nil
	}

	// Members come ordered by child ID, so children are locked in a
	// consistent order across transactions.
	var orphans []int64
	for _, m := range members {
		if err := tx.LockChild(ctx, m.ChildID); err != nil {
			return fmt.Errorf("lock child %d: %w", m.ChildID, err)
		}
		count, err := tx.CountByChild(ctx, m.ChildID)
		if err != nil {
			return fmt.Errorf("count memberships: %w", err)
		}
		if count <= 1 {
			orphans = append(orphans, m.ChildID)
		}
	}

	if err := tx.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}

	for _, id := range orphans {
		if err := tx.DeleteChild(ctx, id); err != nil {
			return fmt.Errorf("delete orphan child %d: %w", id, err)
		}
	}

	slog.Debug("session cleared",
		"session_id", sessionID,
		"memberships", len(members),
		"orphans", len(orphans),
	)
	return nil
}

// lockMembership takes the session lock and checks that the membership exists.
func lockMembership(ctx context.Context, tx Tx, sessionID, childID int64) error {
	sess, err := tx.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return sessionNotFound(sessionID)
	}
	m, err := tx.GetMembership(ctx, sessionID, childID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if m == nil {
		return membershipNotFound(sessionID, childID)
	}
	return nil
}

// lockChildren locks child rows in ascending ID order.
func lockChildren(ctx context.Context, tx Tx, ids ...int64) error {
	slices.Sort(ids)
	for _, id := range ids {
		if err := tx.LockChild(ctx, id); err != nil {
			return fmt.Errorf("lock child %d: %w", id, err)
		}
	}
	return nil
}

// ListMemberships returns the children enrolled in a session.
func (s *Service) ListMemberships(ctx context.Context, sessionID int64) ([]ChildView, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, sessionNotFound(sessionID)
	}

	children, err := s.store.ListChildrenBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	views := make([]ChildView, 0, len(children))
	for _, c := range children {
		views = append(views, toChildView(c))
	}
	return views, nil
}

// duplicateEnrollment builds the conflict returned when the identity is
// already enrolled. The participle agrees with the requested sex.
func duplicateEnrollment(req ChildRequest) error {
	born := "né"
	if req.Sex == SexFemale {
		born = "née"
	}
	return Conflict("L'enfant %s %s %s le %s existe déjà dans cette session",
		req.GivenName, req.Surname, born, DateOnly(req.BirthDate).Format(conflictDateLayout))
}

func childFromRequest(id int64, req ChildRequest) Child {
	return Child{
		ID:          id,
		Surname:     req.Surname,
		GivenName:   req.GivenName,
		Sex:         req.Sex,
		BirthDate:   DateOnly(req.BirthDate),
		SchoolLevel: req.SchoolLevel,
	}
}

// validateChildRequest rejects requests that could never be stored.
func validateChildRequest(req ChildRequest) error {
	var problems []string
	if req.Surname == "" {
		problems = append(problems, "nom manquant")
	}
	if req.GivenName == "" {
		problems = append(problems, "prénom manquant")
	}
	if req.Sex != SexMale && req.Sex != SexFemale {
		problems = append(problems, "genre invalide")
	}
	if req.BirthDate.IsZero() {
		problems = append(problems, "date de naissance manquante")
	}
	if !isSchoolLevel(req.SchoolLevel) {
		problems = append(problems, "niveau scolaire invalide")
	}
	if len(problems) > 0 {
		return Invalid("%s", strings.Join(problems, ", "))
	}
	return nil
}
