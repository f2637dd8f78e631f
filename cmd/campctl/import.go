package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/colo/internal/application"
	"github.com/JonMunkholm/colo/internal/core"
)

// contentTypes maps workbook extensions to the MIME type a browser would send.
var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".xls":  "application/vnd.ms-excel",
}

func contentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}

type importOptions struct {
	sessionID    int64
	file         string
	failOnErrors bool
}

func newImportCmd(open opener) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Enroll the children listed in an Excel workbook",
		Long: `Reads the first sheet of an Excel workbook and enrolls every row into a session.
The first row must hold the column headers (nom, prénom, genre, date de naissance,
niveau scolaire). The import report is printed as JSON.`,
		Example: "  campctl import --session 3 --file enfants.xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(opts.file)
			if err != nil {
				return err
			}
			defer f.Close()

			app, err := open(cmd.Context(), application.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Service.ImportChildren(cmd.Context(), opts.sessionID, core.ImportInput{
				FileName:    filepath.Base(opts.file),
				ContentType: contentTypeFor(opts.file),
				Reader:      f,
			})
			if err != nil {
				return fmt.Errorf("%s", core.FormatUserError(err))
			}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if opts.failOnErrors && report.ErrorCount > 0 {
				return fmt.Errorf("%d row(s) not imported", report.ErrorCount)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.sessionID, "session", 0, "Session ID to enroll into (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Path to the .xlsx workbook (required)")
	cmd.Flags().BoolVar(&opts.failOnErrors, "fail-on-errors", false, "Exit non-zero when any row is reported")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
