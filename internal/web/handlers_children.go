package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/colo/internal/core"
)

// childPayload is the JSON body of an enrollment or membership edit.
// Values go through the same tolerant parsers as spreadsheet cells.
type childPayload struct {
	Surname     string `json:"surname"`
	GivenName   string `json:"givenName"`
	Sex         string `json:"sex"`
	BirthDate   string `json:"birthDate"`
	SchoolLevel string `json:"schoolLevel"`
}

func (p childPayload) toRequest() (core.ChildRequest, error) {
	var errs []error
	req := core.ChildRequest{
		Surname:   strings.TrimSpace(p.Surname),
		GivenName: strings.TrimSpace(p.GivenName),
	}

	sex, err := core.ParseSex(p.Sex)
	if err != nil {
		errs = append(errs, fmt.Errorf("genre invalide '%s'", p.Sex))
	}
	req.Sex = sex

	birth, err := core.ParseDate(p.BirthDate)
	if err != nil {
		errs = append(errs, fmt.Errorf("date de naissance invalide '%s'", p.BirthDate))
	}
	req.BirthDate = birth

	level, err := core.ParseSchoolLevel(p.SchoolLevel)
	if err != nil {
		errs = append(errs, fmt.Errorf("niveau scolaire invalide '%s'", p.SchoolLevel))
	}
	req.SchoolLevel = level

	if len(errs) > 0 {
		return core.ChildRequest{}, core.Invalid("%v", errors.Join(errs...))
	}
	return req, nil
}

func (s *Server) decodeChild(w http.ResponseWriter, r *http.Request) (core.ChildRequest, error) {
	var p childPayload
	if err := decodeJSON(w, r, &p); err != nil {
		return core.ChildRequest{}, err
	}
	return p.toRequest()
}

// missingSessionOr reports an unknown session ahead of a malformed body.
func (s *Server) missingSessionOr(r *http.Request, sessionID int64, err error) error {
	if core.KindOf(err) != core.KindValidation {
		return err
	}
	if _, getErr := s.service.GetSession(r.Context(), sessionID); core.KindOf(getErr) == core.KindNotFound {
		return getErr
	}
	return err
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	children, err := s.service.ListMemberships(r.Context(), sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

func (s *Server) handleEnrollChild(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	req, err := s.decodeChild(w, r)
	if err != nil {
		s.respondError(w, r, s.missingSessionOr(r, sessionID, err))
		return
	}

	view, err := s.service.Enroll(r.Context(), sessionID, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleUpdateChild(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	childID, err := pathID(r, "childID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	req, err := s.decodeChild(w, r)
	if err != nil {
		s.respondError(w, r, s.missingSessionOr(r, sessionID, err))
		return
	}

	view, err := s.service.UpdateMembership(r.Context(), sessionID, childID, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRemoveChild(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	childID, err := pathID(r, "childID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.RemoveMembership(r.Context(), sessionID, childID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveAllChildren(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.RemoveAllMemberships(r.Context(), sessionID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
