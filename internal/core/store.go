package core

import (
	"context"
)

// SessionStore reads and writes camp sessions.
// Get methods return (nil, nil) when the record does not exist.
type SessionStore interface {
	GetSession(ctx context.Context, id int64) (*Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	// SaveSession inserts when s.ID is zero, otherwise updates. It returns the stored record.
	SaveSession(ctx context.Context, s Session) (Session, error)
	DeleteSession(ctx context.Context, id int64) error
}

// ChildStore reads and writes canonical child records.
type ChildStore interface {
	// FindByIdentity matches all four identity fields exactly.
	FindByIdentity(ctx context.Context, id Identity) (*Child, error)
	GetChild(ctx context.Context, id int64) (*Child, error)
	SaveChild(ctx context.Context, c Child) (Child, error)
	DeleteChild(ctx context.Context, id int64) error
	// LockChild holds the child against concurrent membership changes until
	// the enclosing transaction ends. Outside a transaction it does nothing.
	LockChild(ctx context.Context, id int64) error
}

// MembershipStore reads and writes the session/child association.
type MembershipStore interface {
	GetMembership(ctx context.Context, sessionID, childID int64) (*Membership, error)
	SaveMembership(ctx context.Context, m Membership) error
	DeleteMembership(ctx context.Context, sessionID, childID int64) error
	CountByChild(ctx context.Context, childID int64) (int, error)
	ListBySession(ctx context.Context, sessionID int64) ([]Membership, error)
	DeleteBySession(ctx context.Context, sessionID int64) error
	// ListChildrenBySession returns the children of a session ordered by surname, given name.
	ListChildrenBySession(ctx context.Context, sessionID int64) ([]Child, error)
}

// Tx is the set of stores visible inside one transaction.
type Tx interface {
	SessionStore
	ChildStore
	MembershipStore
}

// Store is a transactional backend. Reads outside WithTx run in their own
// implicit transaction. WithTx commits when fn returns nil and rolls back otherwise.
type Store interface {
	Tx
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
