package web

import "net/http"

func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	caseID, err := requiredInt("caseId", r.FormValue("caseId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	claimID, err := requiredInt("claimId", r.FormValue("claimId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	image, err := s.uploadImage(r, "image")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rc, err := s.svc.Receipts.CreateReceipt(r.Context(), identity(r).UserID, caseID, claimID, image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rc)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.svc.Receipts.ListReceipts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(receipts))
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rc, err := s.svc.Receipts.GetReceipt(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}
