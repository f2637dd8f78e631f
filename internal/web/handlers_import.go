package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/colo/internal/core"
	"github.com/JonMunkholm/colo/internal/logging"
	"github.com/JonMunkholm/colo/internal/web/templates"
)

// multipartMemory is how much of a multipart body is kept in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// handleImport enrolls the children of an uploaded workbook (form field "file").
// HTMX requests get the summary fragment, others the JSON report.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	limit := s.cfg.Import.MaxFileSize
	if r.ContentLength > limit {
		s.respondError(w, r, &http.MaxBytesError{Limit: limit})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(w, r, err)
			return
		}
		s.respondError(w, r, core.Invalid("formulaire d'envoi invalide"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.Invalid("fichier manquant (champ \"file\")"))
		return
	}
	defer file.Close()

	logging.WithFields(r.Context(),
		"session_id", sessionID,
		"file", header.Filename,
		"size", header.Size,
	).Info("import requested")

	report, err := s.service.ImportChildren(r.Context(), sessionID, core.ImportInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ImportSummary(report).Render(r.Context(), w); err != nil {
			s.respondError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}
