package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// handleCreateTemplate registers a template from a server-local payload
// directory. The spec file defaults to template.yaml inside the payload.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		SrcDir   string `json:"src_dir"`
		SpecFile string `json:"spec_file,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "invalid JSON body: " + err.Error(),
		})
		return
	}
	if req.SrcDir == "" {
		respondError(w, r, http.StatusBadRequest,
			model.NewValidationError("src_dir is required"))
		return
	}

	t, err := s.repo.Add(r.Context(), req.Name, req.SrcDir, req.SpecFile)
	if err != nil {
		respondRepoError(w, r, err)
		return
	}
	respondCreated(w, r, t)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.repo.List(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	respondOK(w, r, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondRepoError(w, r, err)
		return
	}
	respondOK(w, r, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondRepoError(w, r, err)
		return
	}
	respondOK(w, r, map[string]string{"deleted": chi.URLParam(r, "id")})
}

// respondRepoError maps repository errors to API responses.
func respondRepoError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		respondError(w, r, statusForError(apiErr), apiErr)
		return
	}
	var tmplErr *model.InvalidTemplateError
	if errors.As(err, &tmplErr) {
		respondError(w, r, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: tmplErr.Error(),
		})
		return
	}
	respondError(w, r, http.StatusInternalServerError, &model.APIError{
		Code:    model.ErrInternal,
		Message: err.Error(),
	})
}
