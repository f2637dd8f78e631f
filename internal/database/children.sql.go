package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const findChildByIdentity = `-- name: FindChildByIdentity :one
SELECT id, surname, given_name, sex, birth_date, school_level
FROM child
WHERE surname = $1 AND given_name = $2 AND sex = $3 AND birth_date = $4
ORDER BY id
LIMIT 1
`

type FindChildByIdentityParams struct {
	Surname   string
	GivenName string
	Sex       string
	BirthDate pgtype.Date
}

func (q *Queries) FindChildByIdentity(ctx context.Context, arg FindChildByIdentityParams) (Child, error) {
	row := q.db.QueryRow(ctx, findChildByIdentity,
		arg.Surname,
		arg.GivenName,
		arg.Sex,
		arg.BirthDate,
	)
	var i Child
	err := row.Scan(
		&i.ID,
		&i.Surname,
		&i.GivenName,
		&i.Sex,
		&i.BirthDate,
		&i.SchoolLevel,
	)
	return i, err
}

const getChild = `-- name: GetChild :one
SELECT id, surname, given_name, sex, birth_date, school_level
FROM child
WHERE id = $1
`

func (q *Queries) GetChild(ctx context.Context, id int64) (Child, error) {
	row := q.db.QueryRow(ctx, getChild, id)
	var i Child
	err := row.Scan(
		&i.ID,
		&i.Surname,
		&i.GivenName,
		&i.Sex,
		&i.BirthDate,
		&i.SchoolLevel,
	)
	return i, err
}

const insertChild = `-- name: InsertChild :one
INSERT INTO child (surname, given_name, sex, birth_date, school_level)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, surname, given_name, sex, birth_date, school_level
`

type InsertChildParams struct {
	Surname     string
	GivenName   string
	Sex         string
	BirthDate   pgtype.Date
	SchoolLevel string
}

func (q *Queries) InsertChild(ctx context.Context, arg InsertChildParams) (Child, error) {
	row := q.db.QueryRow(ctx, insertChild,
		arg.Surname,
		arg.GivenName,
		arg.Sex,
		arg.BirthDate,
		arg.SchoolLevel,
	)
	var i Child
	err := row.Scan(
		&i.ID,
		&i.Surname,
		&i.GivenName,
		&i.Sex,
		&i.BirthDate,
		&i.SchoolLevel,
	)
	return i, err
}

const updateChild = `-- name: UpdateChild :one
UPDATE child
SET surname = $2, given_name = $3, sex = $4, birth_date = $5, school_level = $6
WHERE id = $1
RETURNING id, surname, given_name, sex, birth_date, school_level
`

type UpdateChildParams struct {
	ID          int64
	Surname     string
	GivenName   string
	Sex         string
	BirthDate   pgtype.Date
	SchoolLevel string
}

func (q *Queries) UpdateChild(ctx context.Context, arg UpdateChildParams) (Child, error) {
	row := q.db.QueryRow(ctx, updateChild,
		arg.ID,
		arg.Surname,
		arg.GivenName,
		arg.Sex,
		arg.BirthDate,
		arg.SchoolLevel,
	)
	var i Child
	err := row.Scan(
		&i.ID,
		&i.Surname,
		&i.GivenName,
		&i.Sex,
		&i.BirthDate,
		&i.SchoolLevel,
	)
	return i, err
}

const deleteChild = `-- name: DeleteChild :exec
DELETE FROM child WHERE id = $1
`

func (q *Queries) DeleteChild(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteChild, id)
	return err
}

const listChildrenBySession = `-- name: ListChildrenBySession :many
SELECT c.id, c.surname, c.given_name, c.sex, c.birth_date, c.school_level
FROM child c
JOIN membership m ON m.child_id = c.id
WHERE m.session_id = $1
ORDER BY c.surname, c.given_name, c.id
`

func (q *Queries) ListChildrenBySession(ctx context.Context, sessionID int64) ([]Child, error) {
	rows, err := q.db.Query(ctx, listChildrenBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Child
	for rows.Next() {
		var i Child
		if err := rows.Scan(
			&i.ID,
			&i.Surname,
			&i.GivenName,
			&i.Sex,
			&i.BirthDate,
			&i.SchoolLevel,
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
