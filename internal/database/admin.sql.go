package database

import (
	"context"
)

const resetAll = `-- name: ResetAll :exec
TRUNCATE membership, child, camp_session RESTART IDENTITY
`

func (q *Queries) ResetAll(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetAll)
	return err
}

const countRows = `-- name: CountRows :one
SELECT
    (SELECT count(*) FROM camp_session) AS sessions,
    (SELECT count(*) FROM child) AS children,
    (SELECT count(*) FROM membership) AS memberships
`

type CountRowsRow struct {
	Sessions    int64
	Children    int64
	Memberships int64
}

func (q *Queries) CountRows(ctx context.Context) (CountRowsRow, error) {
	row := q.db.QueryRow(ctx, countRows)
	var i CountRowsRow
	err := row.Scan(&i.Sessions, &i.Children, &i.Memberships)
	return i, err
}
