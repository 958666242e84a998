package web

import (
	"net/http"

	"github.com/vbonduro/lostfound/internal/domain"
)

func (s *Server) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	foundItemID, err := requiredInt("foundItemId", r.FormValue("foundItemId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lostReportID, err := optionalInt("lostReportId", r.FormValue("lostReportId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	evidence, err := s.uploadImage(r, "image")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cl, err := s.svc.Claims.CreateClaim(r.Context(), identity(r).UserID, foundItemID, lostReportID, evidence)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cl)
}

type matchRequest struct {
	LostReportID int64 `json:"lostReportId"`
	FoundItemID  int64 `json:"foundItemId"`
}

func (s *Server) handleCreateClaimForStudent(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.LostReportID <= 0 || req.FoundItemID <= 0 {
		s.writeError(w, r, invalidArgument("lostReportId and foundItemId are required"))
		return
	}

	cl, err := s.svc.Claims.CreateClaimForStudent(r.Context(), identity(r).UserID, req.LostReportID, req.FoundItemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cl)
}

func (s *Server) handleListMyClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.svc.Claims.ListMine(r.Context(), identity(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(claims))
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var status *domain.ClaimStatus
	if raw := q.Get("status"); raw != "" {
		st, err := domain.ParseClaimStatus(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		status = &st
	}
	caseID, err := optionalInt("caseId", q.Get("caseId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	claims, err := s.svc.Claims.ListAll(r.Context(), status, caseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(claims))
}

func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := identity(r)
	var owner *int64
	if !id.Role.Privileged() {
		owner = &id.UserID
	}
	cl, err := s.svc.Claims.GetByID(r.Context(), claimID, owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}

func (s *Server) handleUpdateEvidence(w http.ResponseWriter, r *http.Request) {
	claimID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	url, err := s.uploadImage(r, "image")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if url == "" {
		s.writeError(w, r, invalidArgument("image is required"))
		return
	}

	cl, err := s.svc.Claims.UpdateEvidence(r.Context(), claimID, identity(r).UserID, url)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}

func (s *Server) handleApproveClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cl, err := s.svc.Claims.ApproveByStaff(r.Context(), claimID, identity(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}

func (s *Server) handleRejectClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cl, err := s.svc.Claims.RejectByStaff(r.Context(), claimID, identity(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}
