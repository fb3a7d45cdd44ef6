package http

import (
	"net/http"
	"strings"

	"sardinha/internal/core"
	applog "sardinha/internal/log"
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.svc.ListProfiles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, errBadRequest)
		return
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		writeError(w, r, core.ErrEmptyProfileName)
		return
	}

	// The mirror tolerates duplicate names; the API surface does not.
	existing, err := s.svc.ListProfiles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, name) {
			writeError(w, r, errDuplicateProfile)
			return
		}
	}

	profile, err := s.svc.CreateProfile(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Profile created",
		applog.FieldProfile, profile.Name)
	writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleProfileByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	detail, err := s.svc.ProfileByName(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Income float64 `json:"income"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, errBadRequest)
		return
	}
	if req.Income < 0 {
		writeError(w, r, core.ErrInvalidValue)
		return
	}

	profile, err := s.svc.UpdateIncome(r.Context(), r.PathValue("id"), req.Income)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSaveCategories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Categories []core.Category `json:"categories"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, errBadRequest)
		return
	}

	cats := make([]core.Category, 0, len(req.Categories))
	for _, c := range req.Categories {
		c.Label = sanitizeInput(c.Label)
		if c.Key == "" {
			c.Key = core.CategoryKey(c.Label)
		}
		cats = append(cats, c)
	}
	if err := core.ValidateCategories(cats); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.SaveCategories(r.Context(), r.PathValue("id"), cats); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.ListBudgets(r.Context(), r.PathValue("profileID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}
