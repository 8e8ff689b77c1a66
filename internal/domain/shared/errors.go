package shared

import "errors"

// ErrorKind classifies domain errors so callers can branch on the failure
// class without matching message strings.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindValidation ErrorKind = "VALIDATION"
	KindSecurity   ErrorKind = "SECURITY"
	KindConflict   ErrorKind = "CONFLICT"
	KindUpstream   ErrorKind = "UPSTREAM_FAILURE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a NotFound domain error
func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

// NewValidationError creates a Validation domain error
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewSecurityError creates a Security domain error
func NewSecurityError(code, message string) *DomainError {
	return NewDomainError(KindSecurity, code, message)
}

// NewConflictError creates a Conflict domain error
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewUpstreamError creates an UpstreamFailure domain error
func NewUpstreamError(code, message string) *DomainError {
	return NewDomainError(KindUpstream, code, message)
}

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewConflictError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewSecurityError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState        = NewValidationError("INVALID_STATE", "Operation not allowed in current state")
	ErrKeyMismatch         = NewSecurityError("KEY_MISMATCH", "Owner key does not match the expedition key")
)
