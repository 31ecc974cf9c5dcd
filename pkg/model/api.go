package model

import "time"

// Response is the standard JSON envelope returned by the API.
type Response struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}
