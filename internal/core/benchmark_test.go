package core

import (
	"testing"
)

// ============================================================================
// Cell Parsing Benchmarks
// ============================================================================

// BenchmarkParseBirthDate covers the three accepted shapes of a date cell.
func BenchmarkParseBirthDate(b *testing.B) {
	cells := []string{
		"15/03/2014", // d/m/yyyy
		"2014-03-15", // ISO
		"41713",      // Excel serial
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cells {
			ParseBirthDate(c)
		}
	}
}

// BenchmarkParseSex benchmarks the accent-folding vocabulary lookup.
func BenchmarkParseSex(b *testing.B) {
	cells := []string{"M", "Féminin", "garçon", "FILLE"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cells {
			ParseSex(c)
		}
	}
}

func BenchmarkParseSchoolLevel(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseSchoolLevel("6ème")
	}
}

func BenchmarkCleanCell(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CleanCell("\u00a0=\"Martin\"\u00a0")
	}
}

// ============================================================================
// Header Detection Benchmarks
// ============================================================================

func BenchmarkNormalizeHeader(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeHeader("  Date de Naissance de l'Enfant ")
	}
}

// BenchmarkDetectColumns runs detection on a header with extra columns
// and the required ones out of order.
func BenchmarkDetectColumns(b *testing.B) {
	header := []string{
		"N°", "Niveau scolaire", "Nom de l'enfant", "Prénom", "Adresse",
		"Téléphone", "Sexe", "Date de naissance", "Allergies",
	}
	mappings := DefaultColumnMappings()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, missing := DetectColumns(header, mappings); len(missing) > 0 {
			b.Fatalf("missing = %v", missing)
		}
	}
}
