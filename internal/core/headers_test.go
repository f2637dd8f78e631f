package core

import (
	"reflect"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Prénom", "prenom"},
		{"  nom  ", "nom"},
		{"NOM", "nom"},
		{"Date de naissance", "datedenaissance"},
		{"Niveau\tscolaire", "niveauscolaire"},
		{"Élève", "eleve"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeHeader(tt.input); got != tt.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectColumns_SurnameVariants(t *testing.T) {
	for _, h := range []string{"Nom de l'enfant", "NOM", "  nom  "} {
		t.Run(h, func(t *testing.T) {
			header := []string{"Prénom", h, "Genre", "Date de naissance", "Classe"}
			idx, missing := DetectColumns(header, DefaultColumnMappings())
			if len(missing) != 0 {
				t.Fatalf("missing = %v, want none", missing)
			}
			if idx[FieldSurname] != 1 {
				t.Errorf("surname column = %d, want 1", idx[FieldSurname])
			}
			if idx[FieldGivenName] != 0 {
				t.Errorf("given name column = %d, want 0", idx[FieldGivenName])
			}
		})
	}
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name        string
		header      []string
		want        ColumnIndex
		wantMissing []Field
	}{
		{
			name:   "standard order",
			header: []string{"Nom", "Prénom", "Genre", "Date de naissance", "Niveau scolaire"},
			want: ColumnIndex{
				FieldSurname: 0, FieldGivenName: 1, FieldSex: 2, FieldBirthDate: 3, FieldSchoolLevel: 4,
			},
		},
		{
			name:   "given name before surname with extra columns",
			header: []string{"N°", "Prénom", "Nom", "Sexe", "Allergies", "Né(e) le / date naissance", "Classe"},
			want: ColumnIndex{
				FieldGivenName: 1, FieldSurname: 2, FieldSex: 3, FieldBirthDate: 5, FieldSchoolLevel: 6,
			},
		},
		{
			name:        "date without naissance is not a birth date",
			header:      []string{"Nom", "Prénom", "Genre", "Date d'arrivée", "Niveau"},
			want:        ColumnIndex{FieldSurname: 0, FieldGivenName: 1, FieldSex: 2, FieldSchoolLevel: 4},
			wantMissing: []Field{FieldBirthDate},
		},
		{
			name:        "first matching column wins",
			header:      []string{"Nom", "Nom d'usage", "Prénom", "Genre", "Date de naissance", "Niveau"},
			want:        ColumnIndex{FieldSurname: 0, FieldGivenName: 2, FieldSex: 3, FieldBirthDate: 4, FieldSchoolLevel: 5},
			wantMissing: nil,
		},
		{
			name:   "empty header",
			header: nil,
			want:   ColumnIndex{},
			wantMissing: []Field{
				FieldGivenName, FieldSurname, FieldSex, FieldBirthDate, FieldSchoolLevel,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := DetectColumns(tt.header, DefaultColumnMappings())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectColumns() = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(missing, tt.wantMissing) {
				t.Errorf("missing = %v, want %v", missing, tt.wantMissing)
			}
		})
	}
}

func TestMissingColumnMessages(t *testing.T) {
	msgs := missingColumnMessages(DefaultColumnMappings(), []Field{FieldSex, FieldSchoolLevel})

	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3: %q", len(msgs), msgs)
	}
	want := []string{"Colonne manquante : Genre", "Colonne manquante : Niveau scolaire"}
	if !reflect.DeepEqual(msgs[1:], want) {
		t.Errorf("messages = %q, want %q", msgs[1:], want)
	}
}

func TestMergeColumnMappings(t *testing.T) {
	data := []byte(`
columns:
  surname: ["Patronyme"]
  schoolLevel: ["grade", ""]
`)
	mappings, err := mergeColumnMappings(DefaultColumnMappings(), data)
	if err != nil {
		t.Fatalf("mergeColumnMappings error = %v", err)
	}

	idx, missing := DetectColumns(
		[]string{"Patronyme", "Prénom", "Genre", "Date de naissance", "Grade"},
		mappings,
	)
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want none", missing)
	}
	if idx[FieldSurname] != 0 || idx[FieldSchoolLevel] != 4 {
		t.Errorf("idx = %v", idx)
	}

	if _, err := mergeColumnMappings(DefaultColumnMappings(), []byte("columns:\n  shoeSize: [pointure]\n")); err == nil {
		t.Error("unknown field accepted, want error")
	}
}
