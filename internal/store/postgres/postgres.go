// Package postgres implements core.Store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/colo/internal/core"
	db "github.com/JonMunkholm/colo/internal/database"
)

// Store runs single statements on the pool and ledger operations in a pgx transaction.
type Store struct {
	pool *pgxpool.Pool
	queries
}

var _ core.Store = (*Store)(nil)

// New returns a store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:    pool,
		queries: queries{q: db.New(pool)},
	}
}

// WithTx runs fn in a transaction. Session reads inside fn take a row lock
// so concurrent mutations of the same session run one after the other, and
// LockChild does the same for one child across sessions.
func (s *Store) WithTx(ctx context.Context, fn func(tx core.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(queries{q: db.New(tx), locking: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// queries adapts the generated queries to the core store interfaces.
type queries struct {
	q       *db.Queries
	locking bool
}

// ============================================================================
// Sessions
// ============================================================================

func (r queries) GetSession(ctx context.Context, id int64) (*core.Session, error) {
	if r.locking {
		if err := r.q.LockSession(ctx, id); err != nil {
			return nil, err
		}
	}
	row, err := r.q.GetSession(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := toSession(row)
	return &s, nil
}

func (r queries) ListSessions(ctx context.Context) ([]core.Session, error) {
	rows, err := r.q.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSession(row))
	}
	return out, nil
}

func (r queries) SaveSession(ctx context.Context, s core.Session) (core.Session, error) {
	if s.ID == 0 {
		row, err := r.q.InsertSession(ctx, db.InsertSessionParams{
			Name:        s.Name,
			Description: toPgText(s.Description),
			StartDate:   toPgDate(s.StartDate),
			EndDate:     toPgDate(s.EndDate),
			Location:    toPgText(s.Location),
			DirectorID:  toPgInt8(s.DirectorID),
		})
		if err != nil {
			return core.Session{}, err
		}
		return toSession(row), nil
	}

	row, err := r.q.UpdateSession(ctx, db.UpdateSessionParams{
		ID:          s.ID,
		Name:        s.Name,
		Description: toPgText(s.Description),
		StartDate:   toPgDate(s.StartDate),
		EndDate:     toPgDate(s.EndDate),
		Location:    toPgText(s.Location),
		DirectorID:  toPgInt8(s.DirectorID),
	})
	if err != nil {
		return core.Session{}, err
	}
	return toSession(row), nil
}

func (r queries) DeleteSession(ctx context.Context, id int64) error {
	return r.q.DeleteSession(ctx, id)
}

// ============================================================================
// Children
// ============================================================================

func (r queries) FindByIdentity(ctx context.Context, id core.Identity) (*core.Child, error) {
	row, err := r.q.FindChildByIdentity(ctx, db.FindChildByIdentityParams{
		Surname:   id.Surname,
		GivenName: id.GivenName,
		Sex:       string(id.Sex),
		BirthDate: toPgDate(id.BirthDate),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := toChild(row)
	return &c, nil
}

func (r queries) GetChild(ctx context.Context, id int64) (*core.Child, error) {
	row, err := r.q.GetChild(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := toChild(row)
	return &c, nil
}

func (r queries) SaveChild(ctx context.Context, c core.Child) (core.Child, error) {
	if c.ID == 0 {
		row, err := r.q.InsertChild(ctx, db.InsertChildParams{
			Surname:     c.Surname,
			GivenName:   c.GivenName,
			Sex:         string(c.Sex),
			BirthDate:   toPgDate(c.BirthDate),
			SchoolLevel: string(c.SchoolLevel),
		})
		if err != nil {
			return core.Child{}, err
		}
		return toChild(row), nil
	}

	row, err := r.q.UpdateChild(ctx, db.UpdateChildParams{
		ID:          c.ID,
		Surname:     c.Surname,
		GivenName:   c.GivenName,
		Sex:         string(c.Sex),
		BirthDate:   toPgDate(c.BirthDate),
		SchoolLevel: string(c.SchoolLevel),
	})
	if err != nil {
		return core.Child{}, err
	}
	return toChild(row), nil
}

func (r queries) DeleteChild(ctx context.Context, id int64) error {
	return r.q.DeleteChild(ctx, id)
}

func (r queries) LockChild(ctx context.Context, id int64) error {
	if !r.locking {
		return nil
	}
	return r.q.LockChild(ctx, id)
}

func (r queries) ListChildrenBySession(ctx context.Context, sessionID int64) ([]core.Child, error) {
	rows, err := r.q.ListChildrenBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Child, 0, len(rows))
	for _, row := range rows {
		out = append(out, toChild(row))
	}
	return out, nil
}

// ============================================================================
// Memberships
// ============================================================================

func (r queries) GetMembership(ctx context.Context, sessionID, childID int64) (*core.Membership, error) {
	row, err := r.q.GetMembership(ctx, db.GetMembershipParams{SessionID: sessionID, ChildID: childID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &core.Membership{SessionID: row.SessionID, ChildID: row.ChildID}, nil
}

func (r queries) SaveMembership(ctx context.Context, m core.Membership) error {
	return r.q.InsertMembership(ctx, db.InsertMembershipParams{SessionID: m.SessionID, ChildID: m.ChildID})
}

func (r queries) DeleteMembership(ctx context.Context, sessionID, childID int64) error {
	return r.q.DeleteMembership(ctx, db.DeleteMembershipParams{SessionID: sessionID, ChildID: childID})
}

func (r queries) CountByChild(ctx context.Context, childID int64) (int, error) {
	n, err := r.q.CountMembershipsByChild(ctx, childID)
	return int(n), err
}

func (r queries) ListBySession(ctx context.Context, sessionID int64) ([]core.Membership, error) {
	rows, err := r.q.ListMembershipsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Membership{SessionID: row.SessionID, ChildID: row.ChildID})
	}
	return out, nil
}

func (r queries) DeleteBySession(ctx context.Context, sessionID int64) error {
	return r.q.DeleteMembershipsBySession(ctx, sessionID)
}

// ============================================================================
// Conversions
// ============================================================================

func toSession(row db.CampSession) core.Session {
	s := core.Session{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Location:    row.Location.String,
		StartDate:   fromPgDate(row.StartDate),
		EndDate:     fromPgDate(row.EndDate),
	}
	if row.DirectorID.Valid {
		id := row.DirectorID.Int64
		s.DirectorID = &id
	}
	return s
}

func toChild(row db.Child) core.Child {
	return core.Child{
		ID:          row.ID,
		Surname:     row.Surname,
		GivenName:   row.GivenName,
		Sex:         core.Sex(row.Sex),
		BirthDate:   fromPgDate(row.BirthDate),
		SchoolLevel: core.SchoolLevel(row.SchoolLevel),
	}
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: core.DateOnly(t), Valid: true}
}

func fromPgDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return core.DateOnly(d.Time)
}

func toPgInt8(id *int64) pgtype.Int8 {
	if id == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *id, Valid: true}
}
