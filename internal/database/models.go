package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type CampSession struct {
	ID          int64
	Name        string
	Description pgtype.Text
	StartDate   pgtype.Date
	EndDate     pgtype.Date
	Location    pgtype.Text
	DirectorID  pgtype.Int8
	CreatedAt   pgtype.Timestamptz
}

type Child struct {
	ID          int64
	Surname     string
	GivenName   string
	Sex         string
	BirthDate   pgtype.Date
	SchoolLevel string
}

type Membership struct {
	SessionID int64
	ChildID   int64
	CreatedAt pgtype.Timestamptz
}
