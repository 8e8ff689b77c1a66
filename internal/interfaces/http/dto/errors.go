package dto

import (
	"net/http"

	"github.com/corsair/backend/internal/domain/shared"
)

// Error code constants for errors raised by the HTTP layer itself.
// Domain errors carry their own codes (INVALID_KEY, OVER_CONSUMPTION, ...)
// and are mapped by kind.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeMissingOwnerKey is used when an owner-gated operation lacks the X-Owner-Key header
	ErrCodeMissingOwnerKey = "MISSING_OWNER_KEY"
	// ErrCodeInvalidOwnerKey is used when the X-Owner-Key header is not valid hex key material
	ErrCodeInvalidOwnerKey = "INVALID_OWNER_KEY"
)

// KindHTTPStatus maps domain error kinds to HTTP status codes.
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindNotFound:   http.StatusNotFound,
	shared.KindValidation: http.StatusBadRequest,
	shared.KindSecurity:   http.StatusUnauthorized,
	shared.KindConflict:   http.StatusConflict,
	shared.KindUpstream:   http.StatusBadGateway,
}

// ErrorCodeHTTPStatus overrides the kind mapping for codes whose status
// differs from their kind's default.
var ErrorCodeHTTPStatus = map[string]int{
	// The caller is authenticated but acts on an expedition it does not own,
	// or presents key material that does not match the stored fingerprint.
	"UNAUTHORIZED":   http.StatusForbidden,
	"KEY_MISMATCH":   http.StatusForbidden,
	"DECRYPT_FAILED": http.StatusForbidden,

	// State machine violations are well-formed requests the domain refuses.
	"INVALID_STATE":   http.StatusUnprocessableEntity,
	"DEADLINE_PASSED": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error,
// preferring the per-code override over the kind default.
func GetHTTPStatus(err *shared.DomainError) int {
	if status, ok := ErrorCodeHTTPStatus[err.Code]; ok {
		return status
	}
	if status, ok := KindHTTPStatus[err.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
