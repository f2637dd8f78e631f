package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/colo/internal/application"
	"github.com/JonMunkholm/colo/internal/config"
	"github.com/JonMunkholm/colo/internal/core"
)

// memoryOpener returns an opener sharing one in-memory app across commands.
func memoryOpener(t *testing.T) opener {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Backend: config.BackendMemory},
		Import:   config.ImportConfig{MaxConcurrent: 1, MaxWaitTime: time.Second, Timeout: time.Minute},
	}
	app, err := application.Open(context.Background(), cfg, application.Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return func(ctx context.Context, opts application.Options) (*application.App, error) {
		return app, nil
	}
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(open)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeWorkbook(t *testing.T, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "enfants.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportCommand(t *testing.T) {
	open := memoryOpener(t)

	if _, err := run(t, open, "sessions", "create", "--name", "Été", "--start", "2024-07-08"); err != nil {
		t.Fatalf("sessions create error = %v", err)
	}

	path := writeWorkbook(t,
		[]any{"Nom", "Prénom", "Sexe", "Date de naissance", "Classe"},
		[]any{"Martin", "Emma", "fille", "15/03/2014", "CP"},
		[]any{"Bernard", "Lucas", "garçon", "2013-11-02", "ce1"},
	)
	out, err := run(t, open, "import", "--session", "1", "--file", path)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}

	var report core.ImportReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out)
	}
	if report.TotalRows != 2 || report.Created != 2 || report.ErrorCount != 0 {
		t.Errorf("report = %+v", report)
	}

	out, err = run(t, open, "children", "--session", "1")
	if err != nil {
		t.Fatalf("children error = %v", err)
	}
	var children []core.ChildView
	if err := json.Unmarshal([]byte(out), &children); err != nil {
		t.Fatal(err)
	}
	if len(children) != 2 || children[0].Surname != "Bernard" {
		t.Errorf("children = %+v", children)
	}

	// Re-import: every row already exists.
	if _, err := run(t, open, "import", "--session", "1", "--file", path, "--fail-on-errors"); err == nil {
		t.Error("expected --fail-on-errors to report the duplicate rows")
	}
}

func TestImportCommand_Errors(t *testing.T) {
	open := memoryOpener(t)
	path := writeWorkbook(t, []any{"Nom"})

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing flags", []string{"import"}, "required flag"},
		{"missing file", []string{"import", "--session", "1", "--file", filepath.Join(t.TempDir(), "none.xlsx")}, "no such file"},
		{"unknown session", []string{"import", "--session", "9", "--file", path}, "session 9 introuvable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, open, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSessionsCommands(t *testing.T) {
	open := memoryOpener(t)

	if _, err := run(t, open, "sessions", "create", "--name", "Hiver", "--start", "08/02/2025"); err == nil {
		t.Error("expected error for a non ISO start date")
	}
	if _, err := run(t, open, "sessions", "create", "--name", "Hiver"); err != nil {
		t.Fatalf("create error = %v", err)
	}

	out, err := run(t, open, "sessions", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"name": "Hiver"`) {
		t.Errorf("list output = %s", out)
	}

	if out, err := run(t, open, "sessions", "delete", "1"); err != nil || !strings.Contains(out, "deleted") {
		t.Errorf("delete = %q, %v", out, err)
	}
	if _, err := run(t, open, "sessions", "delete", "1"); core.KindOf(err) != core.KindNotFound {
		t.Errorf("second delete error = %v, want not found", err)
	}
}

func TestPostgresOnlyCommands(t *testing.T) {
	open := memoryOpener(t)

	for _, args := range [][]string{{"migrate"}, {"stats"}, {"reset", "--yes"}} {
		if _, err := run(t, open, args...); err != errNeedsPostgres {
			t.Errorf("%v error = %v, want errNeedsPostgres", args, err)
		}
	}
	if _, err := run(t, open, "reset"); err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Errorf("reset without --yes error = %v", err)
	}
}

func TestMigratePrint(t *testing.T) {
	out, err := run(t, nil, "migrate", "--print")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "CREATE TABLE IF NOT EXISTS membership") {
		t.Errorf("schema output missing membership table:\n%s", out)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"B.XLSM": "application/vnd.ms-excel.sheet.macroEnabled.12",
		"c.csv":  "application/octet-stream",
	}
	for in, want := range tests {
		if got := contentTypeFor(in); got != want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", in, got, want)
		}
	}
}
