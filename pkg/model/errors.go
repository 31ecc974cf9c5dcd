package model

import "fmt"

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrConflict   ErrorCode = "CONFLICT"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the HTTP API and the
// template validator.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// UnknownRunError is returned when a run id is not known to the engine,
// either because it never existed or because the run was canceled.
type UnknownRunError struct {
	RunID string
}

func (e *UnknownRunError) Error() string {
	return fmt.Sprintf("unknown run '%s'", e.RunID)
}

// MissingArgumentError is returned when a required template parameter has
// neither an argument value nor a default.
type MissingArgumentError struct {
	ParameterID string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing argument for parameter '%s'", e.ParameterID)
}

// InvalidTemplateError is returned when a template document violates the
// format, e.g. a command references an undeclared role.
type InvalidTemplateError struct {
	Reason string
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("invalid template: %s", e.Reason)
}

// InvalidArgumentError is returned when an argument value cannot be
// coerced to the declared parameter datatype.
type InvalidArgumentError struct {
	ParameterID string
	Datatype    string
	Value       any
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid value %v for parameter '%s' (datatype %s)", e.Value, e.ParameterID, e.Datatype)
}

// InvalidTransitionError is returned when a state transition is invalid.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s state transition: %s -> %s (entity %s)", e.Entity, e.From, e.To, e.ID)
}
