package web

import (
	"net/http"

	"github.com/vbonduro/lostfound/internal/auth"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/service"
	"github.com/vbonduro/lostfound/internal/store"
)

// identity returns the caller set by the auth middleware.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.GetUser(r.Context(), identity(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// foundItemInput reads the found-item form fields. The image is uploaded last
// so a bad field never stores an orphan file.
func (s *Server) foundItemInput(r *http.Request, requireCampus bool) (service.FoundItemInput, error) {
	var in service.FoundItemInput
	var err error
	if in.CategoryID, err = optionalInt("categoryId", r.FormValue("categoryId")); err != nil {
		return in, err
	}
	if requireCampus {
		if in.CampusID, err = requiredInt("campusId", r.FormValue("campusId")); err != nil {
			return in, err
		}
	}
	if in.FoundDate, err = optionalDate("foundDate", r.FormValue("foundDate")); err != nil {
		return in, err
	}
	in.Description = r.FormValue("description")
	in.FoundLocation = r.FormValue("foundLocation")
	if in.ImageURL, err = s.uploadImage(r, "image"); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Server) handleRegisterFoundItem(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.foundItemInput(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, c, err := s.svc.FoundItems.Register(r.Context(), identity(r).UserID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"foundItem": item, "case": c})
}

func (s *Server) handleUpdateFoundItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.foundItemInput(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.svc.FoundItems.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleListFoundItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.FoundItemFilter
	var err error
	if f.CampusID, err = optionalInt("campusId", q.Get("campusId")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.CategoryID, err = optionalInt("categoryId", q.Get("categoryId")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if raw := q.Get("status"); raw != "" {
		st := domain.FoundItemStatus(raw)
		if st != domain.FoundItemStored && st != domain.FoundItemReturned {
			s.writeError(w, r, invalidArgument("status must be STORED or RETURNED"))
			return
		}
		f.Status = &st
	}

	items, err := s.svc.FoundItems.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleGetFoundItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.svc.FoundItems.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
