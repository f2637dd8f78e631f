package core

// convert.go turns spreadsheet cell text into typed child fields.
//
// These functions handle the messy reality of hand-maintained workbooks:
//   - French and English words for sex, with or without accents
//   - Dates typed as text (15/03/2014, 2014-03-15) or stored as Excel serials
//   - School levels written as codes (CE1) or ordinals (6ème)
//   - Excel formula prefixes (="value") and stray quotes

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const isoDate = "2006-01-02"

// birthDateLayouts are tried in order before the serial fallback.
var birthDateLayouts = []string{
	"2/1/2006",
	"2006-1-2",
}

var (
	ErrInvalidSex         = errors.New("invalid sex")
	ErrInvalidBirthDate   = errors.New("invalid birth date")
	ErrInvalidSchoolLevel = errors.New("invalid school level")
)

// sexWords maps accent-folded lowercase words to a sex.
var sexWords = map[string]Sex{
	"m":        SexMale,
	"h":        SexMale,
	"g":        SexMale,
	"masculin": SexMale,
	"garcon":   SexMale,
	"homme":    SexMale,
	"male":     SexMale,
	"boy":      SexMale,

	"f":        SexFemale,
	"feminin":  SexFemale,
	"fille":    SexFemale,
	"femme":    SexFemale,
	"female":   SexFemale,
	"girl":     SexFemale,
}

// schoolLevelAliases maps folded spellings that are not enum names.
var schoolLevelAliases = map[string]SchoolLevel{
	"6E": LevelSixieme, "6EME": LevelSixieme,
	"5E": LevelCinquieme, "5EME": LevelCinquieme,
	"4E": LevelQuatrieme, "4EME": LevelQuatrieme,
	"3E": LevelTroisieme, "3EME": LevelTroisieme,
	"2NDE": LevelSeconde, "2DE": LevelSeconde,
	"1ERE": LevelPremiere,
	"TLE": LevelTerminale, "TERM": LevelTerminale,
}

// ParseSex reads a sex from its French or English spelling, ignoring case and accents.
func ParseSex(s string) (Sex, error) {
	key := strings.ToLower(FoldAccents(strings.TrimSpace(s)))
	if sex, ok := sexWords[key]; ok {
		return sex, nil
	}
	return "", ErrInvalidSex
}

// ParseDate reads a written date as d/m/yyyy or yyyy-m-d. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, ErrInvalidBirthDate
}

// ParseBirthDate reads a spreadsheet cell: a written date as ParseDate
// accepts it, or else an Excel serial day number.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidBirthDate
	}
	if t, err := ParseDate(s); err == nil {
		return t, nil
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < 1 {
		return time.Time{}, ErrInvalidBirthDate
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, ErrInvalidBirthDate
	}
	return DateOnly(t), nil
}

// ParseSchoolLevel reads a school level, ignoring case, accents and spaces.
func ParseSchoolLevel(s string) (SchoolLevel, error) {
	key := strings.ToUpper(stripSpaces(FoldAccents(s)))
	if key == "" {
		return "", ErrInvalidSchoolLevel
	}
	if isSchoolLevel(SchoolLevel(key)) {
		return SchoolLevel(key), nil
	}
	if lvl, ok := schoolLevelAliases[key]; ok {
		return lvl, nil
	}
	return "", ErrInvalidSchoolLevel
}

func isSchoolLevel(l SchoolLevel) bool {
	for _, known := range SchoolLevels {
		if l == known {
			return true
		}
	}
	return false
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace (including non-breaking spaces)
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"`)

	return strings.TrimSpace(s)
}
