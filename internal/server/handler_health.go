package server

import (
	"net/http"
	"time"
)

// handleHealth reports liveness and uptime.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}
