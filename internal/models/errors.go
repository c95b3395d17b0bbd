package models

import (
	"fmt"
	"strings"
)

type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindExternal   ErrorKind = "external"
	ErrorKindInternal   ErrorKind = "internal"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindNotFound   ErrorKind = "not_found"
)

// AppError is the single error currency of the pipeline. Stage boundaries
// convert anything they catch into one of these; raw errors never cross the
// orchestrator.
type AppError struct {
	Kind     ErrorKind              `json:"kind"`
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Cause    error                  `json:"-"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel copies produced by WithCause and WithMetadata, so
// errors.Is keeps working on decorated sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithCause returns a copy carrying the underlying error, so that sentinel
// errors are never mutated in place.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	clone := *e
	clone.Metadata = make(map[string]interface{}, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		clone.Metadata[k] = v
	}
	clone.Metadata[key] = value
	return &clone
}

func NewValidationError(code, message string) *AppError {
	return &AppError{Kind: ErrorKindValidation, Code: code, Message: message}
}

func NewExternalError(code, message string) *AppError {
	return &AppError{Kind: ErrorKindExternal, Code: code, Message: message}
}

func NewInternalError(code, message string) *AppError {
	return &AppError{Kind: ErrorKindInternal, Code: code, Message: message}
}

func NewTimeoutError(code, message string) *AppError {
	return &AppError{Kind: ErrorKindTimeout, Code: code, Message: message}
}

func NewNotFoundError(code, message string) *AppError {
	return &AppError{Kind: ErrorKindNotFound, Code: code, Message: message}
}

// WrapExternalError tags a collaborator failure with the service name.
func WrapExternalError(service string, err error) *AppError {
	code := strings.ToUpper(service) + "_FAILED"
	return NewExternalError(code, fmt.Sprintf("%s request failed", service)).WithCause(err)
}

var (
	ErrWorkflowNotFound = NewNotFoundError("WORKFLOW_NOT_FOUND", "workflow not found")
	ErrProfileNotFound  = NewNotFoundError("PROFILE_NOT_FOUND", "client profile not found")
	ErrSessionNotFound  = NewNotFoundError("SESSION_NOT_FOUND", "conversation session not found")
	ErrUnknownAgent     = NewNotFoundError("UNKNOWN_AGENT", "unknown agent name")
)
