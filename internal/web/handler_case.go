package web

import (
	"net/http"

	"github.com/vbonduro/lostfound/internal/domain"
)

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	campusID, err := optionalInt("campusId", q.Get("campusId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var status *domain.CaseStatus
	if raw := q.Get("status"); raw != "" {
		st, err := domain.ParseCaseStatus(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		status = &st
	}

	cases, err := s.svc.Cases.ListCases(r.Context(), campusID, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cases))
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.svc.Cases.GetCase(r.Context(), caseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetCaseStatus(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.svc.Cases.SetStatus(r.Context(), caseID, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("case status set by staff", "case_id", caseID, "staff_id", identity(r).UserID, "status", c.Status)
	writeJSON(w, http.StatusOK, c)
}
