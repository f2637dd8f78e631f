package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/colo/internal/core"
)

type sessionPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Location    string `json:"location"`
	DirectorID  *int64 `json:"directorId"`
}

func (p sessionPayload) toRequest() (core.SessionRequest, error) {
	start, errStart := parseOptionalDate("date de début", p.StartDate)
	end, errEnd := parseOptionalDate("date de fin", p.EndDate)
	if err := errors.Join(errStart, errEnd); err != nil {
		return core.SessionRequest{}, core.Invalid("%v", err)
	}
	return core.SessionRequest{
		Name:        p.Name,
		Description: p.Description,
		StartDate:   start,
		EndDate:     end,
		Location:    p.Location,
		DirectorID:  p.DirectorID,
	}, nil
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var p sessionPayload
	if err := decodeJSON(w, r, &p); err != nil {
		s.respondError(w, r, err)
		return
	}
	req, err := p.toRequest()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	view, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	view, err := s.service.GetSession(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.DeleteSession(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
