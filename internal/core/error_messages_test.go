package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "untyped not found",
			err:         NotFound("enfant 4 introuvable"),
			wantCode:    "ENR000",
			wantMessage: "enfant 4 introuvable",
		},
		{
			name:        "session not found keeps its own message",
			err:         sessionNotFound(4),
			wantCode:    "ENR001",
			wantMessage: "session 4 introuvable",
		},
		{
			name:        "wrapped membership not found",
			err:         fmt.Errorf("remove: %w", membershipNotFound(1, 2)),
			wantCode:    "ENR004",
			wantMessage: "l'enfant 2 n'est pas inscrit dans la session 1",
		},
		{
			name:        "unsupported file",
			err:         unsupportedFile("text/csv"),
			wantCode:    "IMP003",
			wantMessage: `type de fichier non pris en charge : "text/csv"`,
		},
		{
			name:        "empty file",
			err:         emptyFile(),
			wantCode:    "IMP004",
			wantMessage: "fichier vide",
		},
		{
			name:        "wrapped conflict",
			err:         fmt.Errorf("enroll: %w", Conflict("existe déjà")),
			wantCode:    "ENR002",
			wantMessage: "existe déjà",
		},
		{
			name:        "validation",
			err:         Invalid("genre invalide"),
			wantCode:    "ENR003",
			wantMessage: "genre invalide",
		},
		{
			name:        "io failure",
			err:         IOFailure(errors.New("zip: not a valid zip file"), "le fichier Excel ne peut pas être lu"),
			wantCode:    "IMP001",
			wantMessage: "le fichier Excel ne peut pas être lu",
		},
		{
			name:        "limiter saturated",
			err:         ErrTooManyImports,
			wantCode:    "IMP002",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "duplicate key",
			err:         errors.New("ERROR: duplicate key value violates unique constraint \"membership_pkey\""),
			wantCode:    "DB001",
			wantMessage: "A record with these values already exists",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode:    "DB003",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("import interrupted at line 40: %w", errors.New("context deadline exceeded")),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("something odd"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError().Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError().Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_Actions(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantAction string
	}{
		{"missing session", sessionNotFound(1), "Refresh the session list"},
		{"missing membership", membershipNotFound(1, 2), "Refresh the children list"},
		{"other missing record", NotFound("x"), "Refresh the page and try again"},
		{"unsupported upload", unsupportedFile("text/csv"), "Upload an Excel workbook (.xlsx)"},
		{"child data", Invalid("genre invalide"), "Check the submitted fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Action; got != tt.wantAction {
				t.Errorf("MapError().Action = %q, want %q", got, tt.wantAction)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindInternal},
		{"plain", errors.New("boom"), KindInternal},
		{"not found", NotFound("x"), KindNotFound},
		{"wrapped twice", fmt.Errorf("a: %w", fmt.Errorf("b: %w", Conflict("x"))), KindConflict},
		{"io", IOFailure(errors.New("eof"), "x"), KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyImports)
	want := "System is busy processing other imports (Code: IMP002). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
	if !IsUserFacing(Invalid("x")) || IsUserFacing(errors.New("odd")) {
		t.Error("IsUserFacing mismatch")
	}
}
