// Package memory provides an in-memory transactional core.Store.
//
// It backs local development (STORE_BACKEND=memory) and the core and web
// tests. A transaction writes to the live state and journals an undo step
// for every change; the journal is replayed backwards when the callback fails.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/colo/internal/core"
)

type membershipKey struct {
	sessionID int64
	childID   int64
}

type state struct {
	sessions    map[int64]core.Session
	children    map[int64]core.Child
	memberships map[membershipKey]struct{}
	nextSession int64
	nextChild   int64
}

func newState() *state {
	return &state{
		sessions:    map[int64]core.Session{},
		children:    map[int64]core.Child{},
		memberships: map[membershipKey]struct{}{},
	}
}

// Store is a mutex-guarded in-memory store. The zero value is not usable; call New.
type Store struct {
	mu    sync.Mutex
	state *state
}

var _ core.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// WithTx runs fn with the store locked and commits when fn returns nil.
// Calling the Store itself from within fn deadlocks; use tx.
func (s *Store) WithTx(ctx context.Context, fn func(tx core.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{state: s.state}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// run executes a single statement against the live state. Every txn method
// checks its constraints before writing, so a failed statement leaves no trace.
func (s *Store) run(ctx context.Context, fn func(tx *txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&txn{state: s.state})
}

func (s *Store) GetSession(ctx context.Context, id int64) (sess *core.Session, err error) {
	err = s.run(ctx, func(tx *txn) error {
		sess, err = tx.GetSession(ctx, id)
		return err
	})
	return sess, err
}

func (s *Store) ListSessions(ctx context.Context) (out []core.Session, err error) {
	err = s.run(ctx, func(tx *txn) error {
		out, err = tx.ListSessions(ctx)
		return err
	})
	return out, err
}

func (s *Store) SaveSession(ctx context.Context, in core.Session) (out core.Session, err error) {
	err = s.run(ctx, func(tx *txn) error {
		out, err = tx.SaveSession(ctx, in)
		return err
	})
	return out, err
}

func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	return s.run(ctx, func(tx *txn) error { return tx.DeleteSession(ctx, id) })
}

func (s *Store) FindByIdentity(ctx context.Context, id core.Identity) (c *core.Child, err error) {
	err = s.run(ctx, func(tx *txn) error {
		c, err = tx.FindByIdentity(ctx, id)
		return err
	})
	return c, err
}

func (s *Store) GetChild(ctx context.Context, id int64) (c *core.Child, err error) {
	err = s.run(ctx, func(tx *txn) error {
		c, err = tx.GetChild(ctx, id)
		return err
	})
	return c, err
}

func (s *Store) SaveChild(ctx context.Context, in core.Child) (out core.Child, err error) {
	err = s.run(ctx, func(tx *txn) error {
		out, err = tx.SaveChild(ctx, in)
		return err
	})
	return out, err
}

func (s *Store) DeleteChild(ctx context.Context, id int64) error {
	return s.run(ctx, func(tx *txn) error { return tx.DeleteChild(ctx, id) })
}

func (s *Store) LockChild(context.Context, int64) error {
	return nil
}

func (s *Store) GetMembership(ctx context.Context, sessionID, childID int64) (m *core.Membership, err error) {
	err = s.run(ctx, func(tx *txn) error {
		m, err = tx.GetMembership(ctx, sessionID, childID)
		return err
	})
	return m, err
}

func (s *Store) SaveMembership(ctx context.Context, m core.Membership) error {
	return s.run(ctx, func(tx *txn) error { return tx.SaveMembership(ctx, m) })
}

func (s *Store) DeleteMembership(ctx context.Context, sessionID, childID int64) error {
	return s.run(ctx, func(tx *txn) error { return tx.DeleteMembership(ctx, sessionID, childID) })
}

func (s *Store) CountByChild(ctx context.Context, childID int64) (n int, err error) {
	err = s.run(ctx, func(tx *txn) error {
		n, err = tx.CountByChild(ctx, childID)
		return err
	})
	return n, err
}

func (s *Store) ListBySession(ctx context.Context, sessionID int64) (out []core.Membership, err error) {
	err = s.run(ctx, func(tx *txn) error {
		out, err = tx.ListBySession(ctx, sessionID)
		return err
	})
	return out, err
}

func (s *Store) DeleteBySession(ctx context.Context, sessionID int64) error {
	return s.run(ctx, func(tx *txn) error { return tx.DeleteBySession(ctx, sessionID) })
}

func (s *Store) ListChildrenBySession(ctx context.Context, sessionID int64) (out []core.Child, err error) {
	err = s.run(ctx, func(tx *txn) error {
		out, err = tx.ListChildrenBySession(ctx, sessionID)
		return err
	})
	return out, err
}

// txn writes to the shared state and records how to undo each write.
type txn struct {
	state *state
	undo  []func()
}

func (t *txn) journal(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *txn) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *txn) GetSession(_ context.Context, id int64) (*core.Session, error) {
	sess, ok := t.state.sessions[id]
	if !ok {
		return nil, nil
	}
	sess = copySession(sess)
	return &sess, nil
}

func (t *txn) ListSessions(_ context.Context) ([]core.Session, error) {
	out := make([]core.Session, 0, len(t.state.sessions))
	for _, sess := range t.state.sessions {
		out = append(out, copySession(sess))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *txn) SaveSession(_ context.Context, sess core.Session) (core.Session, error) {
	sess = copySession(sess)
	if sess.ID == 0 {
		prevNext := t.state.nextSession
		t.state.nextSession++
		sess.ID = t.state.nextSession
		t.journal(func() {
			delete(t.state.sessions, sess.ID)
			t.state.nextSession = prevNext
		})
	} else {
		prev, ok := t.state.sessions[sess.ID]
		if !ok {
			return core.Session{}, fmt.Errorf("update session %d: no rows", sess.ID)
		}
		t.journal(func() { t.state.sessions[prev.ID] = prev })
	}
	t.state.sessions[sess.ID] = sess
	return sess, nil
}

// copySession detaches the optional director pointer from the stored record.
func copySession(sess core.Session) core.Session {
	if sess.DirectorID != nil {
		id := *sess.DirectorID
		sess.DirectorID = &id
	}
	return sess
}

// DeleteSession cascades to the session's memberships.
func (t *txn) DeleteSession(_ context.Context, id int64) error {
	t.deleteMemberships(func(k membershipKey) bool { return k.sessionID == id })
	if prev, ok := t.state.sessions[id]; ok {
		delete(t.state.sessions, id)
		t.journal(func() { t.state.sessions[id] = prev })
	}
	return nil
}

func (t *txn) FindByIdentity(_ context.Context, id core.Identity) (*core.Child, error) {
	var best *core.Child
	for _, c := range t.state.children {
		if c.Surname == id.Surname &&
			c.GivenName == id.GivenName &&
			c.Sex == id.Sex &&
			c.BirthDate.Equal(id.BirthDate) {
			if best == nil || c.ID < best.ID {
				match := c
				best = &match
			}
		}
	}
	return best, nil
}

func (t *txn) GetChild(_ context.Context, id int64) (*core.Child, error) {
	c, ok := t.state.children[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *txn) SaveChild(_ context.Context, c core.Child) (core.Child, error) {
	if c.ID == 0 {
		prevNext := t.state.nextChild
		t.state.nextChild++
		c.ID = t.state.nextChild
		t.journal(func() {
			delete(t.state.children, c.ID)
			t.state.nextChild = prevNext
		})
	} else {
		prev, ok := t.state.children[c.ID]
		if !ok {
			return core.Child{}, fmt.Errorf("update child %d: no rows", c.ID)
		}
		t.journal(func() { t.state.children[prev.ID] = prev })
	}
	t.state.children[c.ID] = c
	return c, nil
}

// DeleteChild refuses to delete a child that still has memberships.
func (t *txn) DeleteChild(_ context.Context, id int64) error {
	for k := range t.state.memberships {
		if k.childID == id {
			return fmt.Errorf("delete child %d: violates foreign key, child still enrolled in session %d", id, k.sessionID)
		}
	}
	if prev, ok := t.state.children[id]; ok {
		delete(t.state.children, id)
		t.journal(func() { t.state.children[id] = prev })
	}
	return nil
}

// LockChild is a no-op: the store mutex already serializes transactions.
func (t *txn) LockChild(context.Context, int64) error {
	return nil
}

func (t *txn) GetMembership(_ context.Context, sessionID, childID int64) (*core.Membership, error) {
	if _, ok := t.state.memberships[membershipKey{sessionID, childID}]; !ok {
		return nil, nil
	}
	return &core.Membership{SessionID: sessionID, ChildID: childID}, nil
}

func (t *txn) SaveMembership(_ context.Context, m core.Membership) error {
	if _, ok := t.state.sessions[m.SessionID]; !ok {
		return fmt.Errorf("save membership: violates foreign key, session %d", m.SessionID)
	}
	if _, ok := t.state.children[m.ChildID]; !ok {
		return fmt.Errorf("save membership: violates foreign key, child %d", m.ChildID)
	}
	key := membershipKey{m.SessionID, m.ChildID}
	if _, ok := t.state.memberships[key]; ok {
		return fmt.Errorf("save membership: duplicate key (%d, %d)", m.SessionID, m.ChildID)
	}
	t.state.memberships[key] = struct{}{}
	t.journal(func() { delete(t.state.memberships, key) })
	return nil
}

func (t *txn) DeleteMembership(_ context.Context, sessionID, childID int64) error {
	key := membershipKey{sessionID, childID}
	t.deleteMemberships(func(k membershipKey) bool { return k == key })
	return nil
}

func (t *txn) deleteMemberships(match func(membershipKey) bool) {
	for k := range t.state.memberships {
		if match(k) {
			delete(t.state.memberships, k)
			t.journal(func() { t.state.memberships[k] = struct{}{} })
		}
	}
}

func (t *txn) CountByChild(_ context.Context, childID int64) (int, error) {
	n := 0
	for k := range t.state.memberships {
		if k.childID == childID {
			n++
		}
	}
	return n, nil
}

func (t *txn) ListBySession(_ context.Context, sessionID int64) ([]core.Membership, error) {
	var out []core.Membership
	for k := range t.state.memberships {
		if k.sessionID == sessionID {
			out = append(out, core.Membership{SessionID: k.sessionID, ChildID: k.childID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChildID < out[j].ChildID })
	return out, nil
}

func (t *txn) DeleteBySession(_ context.Context, sessionID int64) error {
	t.deleteMemberships(func(k membershipKey) bool { return k.sessionID == sessionID })
	return nil
}

func (t *txn) ListChildrenBySession(_ context.Context, sessionID int64) ([]core.Child, error) {
	var out []core.Child
	for k := range t.state.memberships {
		if k.sessionID != sessionID {
			continue
		}
		if c, ok := t.state.children[k.childID]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Surname != out[j].Surname {
			return out[i].Surname < out[j].Surname
		}
		if out[i].GivenName != out[j].GivenName {
			return out[i].GivenName < out[j].GivenName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
