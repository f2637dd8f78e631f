package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ImportInput is an uploaded workbook with its declared content type.
type ImportInput struct {
	FileName    string
	ContentType string
	Reader      io.Reader
}

type rowStatus int

const (
	rowSkipped rowStatus = iota
	rowCreated
	rowExisting
	rowFailed
)

// rowOutcome is the result of importing one data row.
type rowOutcome struct {
	status  rowStatus
	message string
}

func skipped() rowOutcome { return rowOutcome{status: rowSkipped} }

func failed(line int, format string, args ...any) rowOutcome {
	return rowOutcome{
		status:  rowFailed,
		message: fmt.Sprintf("Ligne %d : ", line) + fmt.Sprintf(format, args...),
	}
}

func newImportReport() ImportReport {
	return ImportReport{ErrorMessages: []string{}}
}

func (r *ImportReport) addError(msg string) {
	r.ErrorMessages = append(r.ErrorMessages, msg)
	r.ErrorCount = len(r.ErrorMessages)
}

// add folds a row outcome into the report. Skipped rows are not counted.
func (r *ImportReport) add(o rowOutcome) {
	switch o.status {
	case rowSkipped:
		return
	case rowCreated:
		r.Created++
	case rowExisting:
		r.AlreadyExisting++
		r.addError(o.message)
	case rowFailed:
		r.addError(o.message)
	}
	r.TotalRows++
}

// ImportChildren enrolls every child listed in an Excel workbook into a session.
//
// The first row of the first sheet is the header. Row problems are collected
// in the report and never stop the import. Only an unreadable workbook, a
// rejected input, or a missing session returns an error.
func (s *Service) ImportChildren(ctx context.Context, sessionID int64, in ImportInput) (ImportReport, error) {
	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return ImportReport{}, IOFailure(err, "lecture du fichier impossible")
	}
	if len(data) == 0 {
		return ImportReport{}, emptyFile()
	}
	if !isExcelContentType(in.ContentType, in.FileName) {
		return ImportReport{}, unsupportedFile(in.ContentType)
	}

	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return ImportReport{}, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return ImportReport{}, sessionNotFound(sessionID)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportReport{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	logger := slog.With(
		"import_id", uuid.New().String(),
		"session_id", sessionID,
		"file", in.FileName,
	)
	start := time.Now()

	rows, err := readFirstSheet(data)
	if err != nil {
		logger.Warn("workbook unreadable", "error", err)
		return ImportReport{}, IOFailure(err, "le fichier Excel ne peut pas être lu")
	}

	report := newImportReport()

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	idx, missing := DetectColumns(header, s.mappings)
	if len(missing) > 0 {
		for _, msg := range missingColumnMessages(s.mappings, missing) {
			report.addError(msg)
		}
		logger.Info("import rejected, missing columns", "missing", missing)
		return report, nil
	}

	for i := 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("import interrupted", "row", i+1, "error", err)
			return report, fmt.Errorf("import interrupted at line %d: %w", i+1, err)
		}
		report.add(s.importRow(ctx, sessionID, i+1, rows[i], idx))
	}

	logger.Info("import completed",
		"total_rows", report.TotalRows,
		"created", report.Created,
		"already_existing", report.AlreadyExisting,
		"errors", report.ErrorCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// importRow runs the parse pipeline on one row and enrolls the child.
// line is the 1-based spreadsheet line number used in messages.
func (s *Service) importRow(ctx context.Context, sessionID int64, line int, row []string, idx ColumnIndex) rowOutcome {
	values := make(map[Field]string, len(idx))
	blank := 0
	for field, col := range idx {
		v := ""
		if col < len(row) {
			v = CleanCell(row[col])
		}
		values[field] = v
		if v == "" {
			blank++
		}
	}
	if blank == len(idx) {
		return skipped()
	}
	if blank > 0 {
		return failed(line, "données incomplètes")
	}

	sex, err := ParseSex(values[FieldSex])
	if err != nil {
		return failed(line, "genre invalide '%s'", values[FieldSex])
	}
	birthDate, err := ParseBirthDate(values[FieldBirthDate])
	if err != nil {
		return failed(line, "date de naissance invalide '%s'", values[FieldBirthDate])
	}
	level, err := ParseSchoolLevel(values[FieldSchoolLevel])
	if err != nil {
		return failed(line, "niveau scolaire invalide '%s'", values[FieldSchoolLevel])
	}

	_, err = s.Enroll(ctx, sessionID, ChildRequest{
		Surname:     values[FieldSurname],
		GivenName:   values[FieldGivenName],
		Sex:         sex,
		BirthDate:   birthDate,
		SchoolLevel: level,
	})
	switch {
	case err == nil:
		return rowOutcome{status: rowCreated}
	case KindOf(err) == KindConflict:
		return rowOutcome{
			status:  rowExisting,
			message: fmt.Sprintf("Ligne %d : %s", line, MessageOf(err)),
		}
	default:
		msg := MessageOf(err)
		if msg == "" {
			msg = err.Error()
		}
		return failed(line, "erreur lors de l'inscription (%s)", msg)
	}
}
