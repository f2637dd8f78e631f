package core

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Field is a semantic column of the import workbook.
type Field string

const (
	FieldGivenName   Field = "givenName"
	FieldSurname     Field = "surname"
	FieldSex         Field = "sex"
	FieldBirthDate   Field = "birthDate"
	FieldSchoolLevel Field = "schoolLevel"
)

// fieldLabels are the French column names shown in import messages.
var fieldLabels = map[Field]string{
	FieldGivenName:   "Prénom",
	FieldSurname:     "Nom",
	FieldSex:         "Genre",
	FieldBirthDate:   "Date de naissance",
	FieldSchoolLevel: "Niveau scolaire",
}

// Label returns the French column name of the field.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// ColumnMapping lists the keywords that identify a field's column.
// A keyword made of parts joined by "+" matches only when every part appears.
type ColumnMapping struct {
	Field    Field
	Keywords []string
}

// ColumnIndex maps each resolved field to its zero-based column.
type ColumnIndex map[Field]int

// DefaultColumnMappings returns the built-in keywords. Given name is listed
// before surname since "prenom" contains "nom".
func DefaultColumnMappings() []ColumnMapping {
	return []ColumnMapping{
		{Field: FieldGivenName, Keywords: []string{"prenom"}},
		{Field: FieldSurname, Keywords: []string{"nom"}},
		{Field: FieldSex, Keywords: []string{"genre", "sexe"}},
		{Field: FieldBirthDate, Keywords: []string{"date+naissance"}},
		{Field: FieldSchoolLevel, Keywords: []string{"niveau", "classe"}},
	}
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents strips combining marks after canonical decomposition ("Prénom" -> "Prenom").
func FoldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeHeader folds accents, lowercases and removes all whitespace.
func NormalizeHeader(s string) string {
	return stripSpaces(strings.ToLower(FoldAccents(s)))
}

// matches reports whether the normalized header contains the keyword.
func matches(header, keyword string) bool {
	parts := strings.Split(keyword, "+")
	for _, p := range parts {
		p = NormalizeHeader(p)
		if p == "" || !strings.Contains(header, p) {
			return false
		}
	}
	return true
}

// DetectColumns resolves each mapped field to a header column.
//
// Header cells are scanned left to right. For each cell, the first unresolved
// field (in mapping order) whose keyword appears in the normalized cell claims
// that column. Fields left unresolved are returned in mapping order.
func DetectColumns(header []string, mappings []ColumnMapping) (ColumnIndex, []Field) {
	idx := make(ColumnIndex, len(mappings))

	for col, cell := range header {
		h := NormalizeHeader(cell)
		if h == "" {
			continue
		}
	fields:
		for _, m := range mappings {
			if _, done := idx[m.Field]; done {
				continue
			}
			for _, kw := range m.Keywords {
				if matches(h, kw) {
					idx[m.Field] = col
					break fields
				}
			}
		}
	}

	var missing []Field
	for _, m := range mappings {
		if _, ok := idx[m.Field]; !ok {
			missing = append(missing, m.Field)
		}
	}
	return idx, missing
}

// missingColumnMessages explains an unusable header row: one structural
// message followed by one message per missing field.
func missingColumnMessages(mappings []ColumnMapping, missing []Field) []string {
	labels := make([]string, 0, len(mappings))
	for _, m := range mappings {
		labels = append(labels, m.Field.Label())
	}

	msgs := make([]string, 0, len(missing)+1)
	msgs = append(msgs, fmt.Sprintf(
		"Structure du fichier invalide : la première ligne doit contenir les colonnes %s",
		strings.Join(labels, ", ")))
	for _, f := range missing {
		msgs = append(msgs, fmt.Sprintf("Colonne manquante : %s", f.Label()))
	}
	return msgs
}

// mappingsFile is the YAML layout of a custom column mapping file:
//
//	columns:
//	  surname: ["nom de famille"]
//	  schoolLevel: ["grade"]
type mappingsFile struct {
	Columns map[string][]string `yaml:"columns"`
}

// LoadColumnMappings reads extra keywords from a YAML file and appends them
// to the defaults. An empty path returns the defaults.
func LoadColumnMappings(path string) ([]ColumnMapping, error) {
	mappings := DefaultColumnMappings()
	if path == "" {
		return mappings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read column mappings: %w", err)
	}
	return mergeColumnMappings(mappings, data)
}

func mergeColumnMappings(mappings []ColumnMapping, data []byte) ([]ColumnMapping, error) {
	var file mappingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse column mappings: %w", err)
	}

	pos := make(map[Field]int, len(mappings))
	for i, m := range mappings {
		pos[m.Field] = i
	}

	for name, keywords := range file.Columns {
		i, ok := pos[Field(name)]
		if !ok {
			return nil, fmt.Errorf("parse column mappings: unknown field %q", name)
		}
		for _, kw := range keywords {
			if strings.TrimSpace(kw) == "" {
				continue
			}
			mappings[i].Keywords = append(mappings[i].Keywords, kw)
		}
	}
	return mappings, nil
}
