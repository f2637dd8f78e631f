package database

import (
	"context"
)

const getMembership = `-- name: GetMembership :one
SELECT session_id, child_id, created_at
FROM membership
WHERE session_id = $1 AND child_id = $2
`

type GetMembershipParams struct {
	SessionID int64
	ChildID   int64
}

func (q *Queries) GetMembership(ctx context.Context, arg GetMembershipParams) (Membership, error) {
	row := q.db.QueryRow(ctx, getMembership, arg.SessionID, arg.ChildID)
	var i Membership
	err := row.Scan(&i.SessionID, &i.ChildID, &i.CreatedAt)
	return i, err
}

const insertMembership = `-- name: InsertMembership :exec
INSERT INTO membership (session_id, child_id)
VALUES ($1, $2)
`

type InsertMembershipParams struct {
	SessionID int64
	ChildID   int64
}

func (q *Queries) InsertMembership(ctx context.Context, arg InsertMembershipParams) error {
	_, err := q.db.Exec(ctx, insertMembership, arg.SessionID, arg.ChildID)
	return err
}

const deleteMembership = `-- name: DeleteMembership :exec
DELETE FROM membership
WHERE session_id = $1 AND child_id = $2
`

type DeleteMembershipParams struct {
	SessionID int64
	ChildID   int64
}

func (q *Queries) DeleteMembership(ctx context.Context, arg DeleteMembershipParams) error {
	_, err := q.db.Exec(ctx, deleteMembership, arg.SessionID, arg.ChildID)
	return err
}

const countMembershipsByChild = `-- name: CountMembershipsByChild :one
SELECT count(*) FROM membership WHERE child_id = $1
`

func (q *Queries) CountMembershipsByChild(ctx context.Context, childID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countMembershipsByChild, childID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listMembershipsBySession = `-- name: ListMembershipsBySession :many
SELECT session_id, child_id, created_at
FROM membership
WHERE session_id = $1
ORDER BY child_id
`

func (q *Queries) ListMembershipsBySession(ctx context.Context, sessionID int64) ([]Membership, error) {
	rows, err := q.db.Query(ctx, listMembershipsBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Membership
	for rows.Next() {
		var i Membership
		if err := rows.Scan(&i.SessionID, &i.ChildID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteMembershipsBySession = `-- name: DeleteMembershipsBySession :exec
DELETE FROM membership WHERE session_id = $1
`

func (q *Queries) DeleteMembershipsBySession(ctx context.Context, sessionID int64) error {
	_, err := q.db.Exec(ctx, deleteMembershipsBySession, sessionID)
	return err
}

const lockSession = `-- name: LockSession :exec
SELECT id FROM camp_session WHERE id = $1 FOR UPDATE
`

// LockSession serializes ledger mutations on one session until the transaction ends.
func (q *Queries) LockSession(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, lockSession, id)
	return err
}

const lockChild = `-- name: LockChild :exec
SELECT id FROM child WHERE id = $1 FOR UPDATE
`

// LockChild serializes membership counts and orphan deletes on one child
// across sessions until the transaction ends.
func (q *Queries) LockChild(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, lockChild, id)
	return err
}
