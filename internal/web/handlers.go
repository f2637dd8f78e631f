package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/colo/internal/core"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

const isoDate = "2006-01-02"

type healthResponse struct {
	Status  string                   `json:"status"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Imports: s.service.ImportLimiter().Status(),
	})
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalid("identifiant invalide : %q", raw)
	}
	return id, nil
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return core.Invalid("corps de requête vide")
		}
		return core.Invalid("corps de requête invalide : %v", err)
	}
	return nil
}

// parseOptionalDate parses a YYYY-MM-DD string; empty means the zero time.
func parseOptionalDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(isoDate, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s invalide '%s'", field, value)
	}
	return t, nil
}
