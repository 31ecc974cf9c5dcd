package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	respondJSON(w, r, http.StatusOK, data, nil)
}

// respondCreated writes a 201 response with the standard envelope.
func respondCreated(w http.ResponseWriter, r *http.Request, data any) {
	respondJSON(w, r, http.StatusCreated, data, nil)
}

// respondError writes an error response with the standard envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *model.APIError) {
	respondJSON(w, r, status, nil, apiErr)
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any, apiErr *model.APIError) {
	resp := model.Response{
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
		Data:      data,
		Error:     apiErr,
	}
	if apiErr != nil {
		resp.Status = "error"
	} else {
		resp.Status = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// statusForError maps an APIError code to an HTTP status.
func statusForError(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrValidation:
		return http.StatusBadRequest
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
