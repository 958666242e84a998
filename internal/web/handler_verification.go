package web

import (
	"net/http"

	"github.com/vbonduro/lostfound/internal/service"
)

type verificationRequest struct {
	CaseID int64 `json:"caseId"`
}

func (s *Server) handleCreateVerificationRequest(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.CaseID <= 0 {
		s.writeError(w, r, invalidArgument("caseId is required"))
		return
	}

	created, err := s.svc.Verifications.CreateRequest(r.Context(), identity(r).UserID, req.CaseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListPendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := s.svc.Verifications.ListPending(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(pending))
}

func (s *Server) handleGetVerificationRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.svc.Verifications.GetRequest(r.Context(), requestID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateDecision(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	claimID, err := requiredInt("claimId", r.FormValue("claimId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	decision := r.FormValue("decision")
	if decision == "" {
		s.writeError(w, r, invalidArgument("decision is required"))
		return
	}
	evidence, err := s.uploadImage(r, "image")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := s.svc.Verifications.CreateDecision(r.Context(), service.DecisionInput{
		RequestID:        requestID,
		OfficerID:        identity(r).UserID,
		ClaimID:          claimID,
		Decision:         decision,
		Note:             r.FormValue("note"),
		EvidenceImageURL: evidence,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}
