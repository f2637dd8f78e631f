package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getSession = `-- name: GetSession :one
SELECT id, name, description, start_date, end_date, location, director_id, created_at
FROM camp_session
WHERE id = $1
`

func (q *Queries) GetSession(ctx context.Context, id int64) (CampSession, error) {
	row := q.db.QueryRow(ctx, getSession, id)
	var i CampSession
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.StartDate,
		&i.EndDate,
		&i.Location,
		&i.DirectorID,
		&i.CreatedAt,
	)
	return i, err
}

const listSessions = `-- name: ListSessions :many
SELECT id, name, description, start_date, end_date, location, director_id, created_at
FROM camp_session
ORDER BY start_date NULLS FIRST, id
`

func (q *Queries) ListSessions(ctx context.Context) ([]CampSession, error) {
	rows, err := q.db.Query(ctx, listSessions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CampSession
	for rows.Next() {
		var i CampSession
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.StartDate,
			&i.EndDate,
			&i.Location,
			&i.DirectorID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertSession = `-- name: InsertSession :one
INSERT INTO camp_session (name, description, start_date, end_date, location, director_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, description, start_date, end_date, location, director_id, created_at
`

type InsertSessionParams struct {
	Name        string
	Description pgtype.Text
	StartDate   pgtype.Date
	EndDate     pgtype.Date
	Location    pgtype.Text
	DirectorID  pgtype.Int8
}

func (q *Queries) InsertSession(ctx context.Context, arg InsertSessionParams) (CampSession, error) {
	row := q.db.QueryRow(ctx, insertSession,
		arg.Name,
		arg.Description,
		arg.StartDate,
		arg.EndDate,
		arg.Location,
		arg.DirectorID,
	)
	var i CampSession
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.StartDate,
		&i.EndDate,
		&i.Location,
		&i.DirectorID,
		&i.CreatedAt,
	)
	return i, err
}

const updateSession = `-- name: UpdateSession :one
UPDATE camp_session
SET name = $2, description = $3, start_date = $4, end_date = $5, location = $6, director_id = $7
WHERE id = $1
RETURNING id, name, description, start_date, end_date, location, director_id, created_at
`

type UpdateSessionParams struct {
	ID          int64
	Name        string
	Description pgtype.Text
	StartDate   pgtype.Date
	EndDate     pgtype.Date
	Location    pgtype.Text
	DirectorID  pgtype.Int8
}

func (q *Queries) UpdateSession(ctx context.Context, arg UpdateSessionParams) (CampSession, error) {
	row := q.db.QueryRow(ctx, updateSession,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.StartDate,
		arg.EndDate,
		arg.Location,
		arg.DirectorID,
	)
	var i CampSession
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.StartDate,
		&i.EndDate,
		&i.Location,
		&i.DirectorID,
		&i.CreatedAt,
	)
	return i, err
}

const deleteSession = `-- name: DeleteSession :exec
DELETE FROM camp_session WHERE id = $1
`

func (q *Queries) DeleteSession(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteSession, id)
	return err
}
