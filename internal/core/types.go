// Package core provides the enrollment and spreadsheet import logic for camp sessions.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"time"
)

// Sex is the closed set of values stored on a child record.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

// SchoolLevel is the school grade of a child (French school system).
type SchoolLevel string

const (
	LevelPS        SchoolLevel = "PS"
	LevelMS        SchoolLevel = "MS"
	LevelGS        SchoolLevel = "GS"
	LevelCP        SchoolLevel = "CP"
	LevelCE1       SchoolLevel = "CE1"
	LevelCE2       SchoolLevel = "CE2"
	LevelCM1       SchoolLevel = "CM1"
	LevelCM2       SchoolLevel = "CM2"
	LevelSixieme   SchoolLevel = "SIXIEME"
	LevelCinquieme SchoolLevel = "CINQUIEME"
	LevelQuatrieme SchoolLevel = "QUATRIEME"
	LevelTroisieme SchoolLevel = "TROISIEME"
	LevelSeconde   SchoolLevel = "SECONDE"
	LevelPremiere  SchoolLevel = "PREMIERE"
	LevelTerminale SchoolLevel = "TERMINALE"
)

// SchoolLevels lists every accepted school level in school order.
var SchoolLevels = []SchoolLevel{
	LevelPS, LevelMS, LevelGS,
	LevelCP, LevelCE1, LevelCE2, LevelCM1, LevelCM2,
	LevelSixieme, LevelCinquieme, LevelQuatrieme, LevelTroisieme,
	LevelSeconde, LevelPremiere, LevelTerminale,
}

// Identity is the 4-tuple that makes two child records the same person.
type Identity struct {
	Surname   string
	GivenName string
	Sex       Sex
	BirthDate time.Time // Date only, UTC midnight
}

// Child is a canonical child record shared by every session it belongs to.
type Child struct {
	ID          int64
	Surname     string
	GivenName   string
	Sex         Sex
	BirthDate   time.Time
	SchoolLevel SchoolLevel
}

// Identity returns the identity tuple of the child.
func (c Child) Identity() Identity {
	return Identity{
		Surname:   c.Surname,
		GivenName: c.GivenName,
		Sex:       c.Sex,
		BirthDate: c.BirthDate,
	}
}

// Session is a camp session. Memberships reference it by ID.
type Session struct {
	ID          int64
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Location    string
	DirectorID  *int64
}

// Membership associates a child with a session. The pair is unique.
type Membership struct {
	SessionID int64
	ChildID   int64
}

// ChildRequest carries the fields of an enrollment or edit.
type ChildRequest struct {
	Surname     string
	GivenName   string
	Sex         Sex
	BirthDate   time.Time
	SchoolLevel SchoolLevel
}

// Identity returns the identity tuple requested, with the birth date truncated to a day.
func (r ChildRequest) Identity() Identity {
	return Identity{
		Surname:   r.Surname,
		GivenName: r.GivenName,
		Sex:       r.Sex,
		BirthDate: DateOnly(r.BirthDate),
	}
}

// ChildView is the read projection of a child returned to callers.
type ChildView struct {
	ID          int64       `json:"id"`
	Surname     string      `json:"surname"`
	GivenName   string      `json:"givenName"`
	Sex         Sex         `json:"sex"`
	BirthDate   string      `json:"birthDate"` // YYYY-MM-DD
	SchoolLevel SchoolLevel `json:"schoolLevel"`
}

// SessionView is the read projection of a session.
type SessionView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Location    string `json:"location,omitempty"`
	DirectorID  *int64 `json:"directorId,omitempty"`
}

// SessionRequest carries the fields of a new session.
type SessionRequest struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Location    string
	DirectorID  *int64
}

// ImportReport is the summary returned by a bulk import.
// The JSON shape is a wire contract: all fields are always present.
type ImportReport struct {
	TotalRows       int      `json:"totalRows"`
	Created         int      `json:"created"`
	AlreadyExisting int      `json:"alreadyExisting"`
	ErrorCount      int      `json:"errorCount"`
	ErrorMessages   []string `json:"errorMessages"`
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// toChildView projects a child record.
func toChildView(c Child) ChildView {
	return ChildView{
		ID:          c.ID,
		Surname:     c.Surname,
		GivenName:   c.GivenName,
		Sex:         c.Sex,
		BirthDate:   c.BirthDate.Format(isoDate),
		SchoolLevel: c.SchoolLevel,
	}
}

// toSessionView projects a session record.
func toSessionView(s Session) SessionView {
	v := SessionView{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Location:    s.Location,
		DirectorID:  s.DirectorID,
	}
	if !s.StartDate.IsZero() {
		v.StartDate = s.StartDate.Format(isoDate)
	}
	if !s.EndDate.IsZero() {
		v.EndDate = s.EndDate.Format(isoDate)
	}
	return v
}
