package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scailfin/benchmark-multiproc-backend/internal/template"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// handleStartRun starts a run of a registered template. Argument values
// are given as plain JSON scalars; file arguments are server-local paths.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID string         `json:"template_id"`
		Arguments  map[string]any `json:"arguments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "invalid JSON body: " + err.Error(),
		})
		return
	}
	if req.TemplateID == "" {
		respondError(w, r, http.StatusBadRequest,
			model.NewValidationError("template_id is required"))
		return
	}

	t, err := s.repo.Get(r.Context(), req.TemplateID)
	if err != nil {
		respondRepoError(w, r, err)
		return
	}

	args, err := template.Bind(t, req.Arguments)
	if err != nil {
		respondRunError(w, r, err)
		return
	}

	runID, err := s.engine.Execute(r.Context(), t, s.repo.PayloadDir(t.ID), args)
	if err != nil {
		respondRunError(w, r, err)
		return
	}

	run, err := s.engine.State(runID)
	if err != nil {
		respondRunError(w, r, err)
		return
	}
	respondCreated(w, r, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.engine.State(chi.URLParam(r, "id"))
	if err != nil {
		respondRunError(w, r, err)
		return
	}
	respondOK(w, r, run)
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if err := s.engine.Cancel(runID); err != nil {
		respondRunError(w, r, err)
		return
	}
	respondOK(w, r, map[string]string{"canceled": runID})
}

// respondRunError maps engine and argument errors to API responses.
func respondRunError(w http.ResponseWriter, r *http.Request, err error) {
	var unknown *model.UnknownRunError
	if errors.As(err, &unknown) {
		respondError(w, r, http.StatusNotFound, &model.APIError{
			Code:    model.ErrNotFound,
			Message: unknown.Error(),
		})
		return
	}

	var missing *model.MissingArgumentError
	var invalidArg *model.InvalidArgumentError
	var invalidTmpl *model.InvalidTemplateError
	if errors.As(err, &missing) || errors.As(err, &invalidArg) || errors.As(err, &invalidTmpl) {
		respondError(w, r, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: err.Error(),
		})
		return
	}

	respondError(w, r, http.StatusInternalServerError, &model.APIError{
		Code:    model.ErrInternal,
		Message: err.Error(),
	})
}
