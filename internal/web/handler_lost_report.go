package web

import (
	"net/http"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/service"
)

func (s *Server) lostReportInput(r *http.Request) (service.LostReportInput, error) {
	var in service.LostReportInput
	var err error
	if in.CategoryID, err = optionalInt("categoryId", r.FormValue("categoryId")); err != nil {
		return in, err
	}
	if in.LostDate, err = optionalDate("lostDate", r.FormValue("lostDate")); err != nil {
		return in, err
	}
	in.Description = r.FormValue("description")
	in.LostLocation = r.FormValue("lostLocation")
	in.IdentifyingFeatures = r.FormValue("identifyingFeatures")
	in.ClaimPassword = r.FormValue("claimPassword")
	if in.ImageURL, err = s.uploadImage(r, "image"); err != nil {
		return in, err
	}
	return in, nil
}

func views(role domain.Role, reports []*domain.LostReport) []*domain.LostReportView {
	out := make([]*domain.LostReportView, 0, len(reports))
	for _, rep := range reports {
		out = append(out, domain.LostReportViewFor(role, rep))
	}
	return out
}

func (s *Server) handleCreateLostReport(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.lostReportInput(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := identity(r)
	rep, err := s.svc.LostReports.Create(r.Context(), id.UserID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.LostReportViewFor(id.Role, rep))
}

func (s *Server) handleListMyLostReports(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	reports, err := s.svc.LostReports.ListMine(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(id.Role, reports))
}

func (s *Server) handleListLostReports(w http.ResponseWriter, r *http.Request) {
	categoryID, err := optionalInt("categoryId", r.URL.Query().Get("categoryId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reports, err := s.svc.LostReports.ListAll(r.Context(), categoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(identity(r).Role, reports))
}

// handleGetLostReport scopes students to their own reports.
func (s *Server) handleGetLostReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := identity(r)
	var owner *int64
	if !id.Role.Privileged() {
		owner = &id.UserID
	}
	rep, err := s.svc.LostReports.Get(r.Context(), reportID, owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.LostReportViewFor(id.Role, rep))
}

func (s *Server) handleUpdateLostReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.lostReportInput(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := identity(r)
	rep, err := s.svc.LostReports.Update(r.Context(), reportID, id.UserID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.LostReportViewFor(id.Role, rep))
}

func (s *Server) handleDeleteLostReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.LostReports.Delete(r.Context(), reportID, identity(r).UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
