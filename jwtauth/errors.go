package jwtauth

import (
	"errors"
	"fmt"
)

// ErrorCode represents a validation error code
type ErrorCode string

const (
	ErrMissingHeader      ErrorCode = "MISSING_HEADER"
	ErrMalformedBearer    ErrorCode = "MALFORMED_BEARER"
	ErrMalformedToken     ErrorCode = "MALFORMED_TOKEN"
	ErrInvalidSignature   ErrorCode = "INVALID_SIGNATURE"
	ErrClaimDecodeFailure ErrorCode = "CLAIM_DECODE_FAILURE"
	ErrPrivilegeDenied    ErrorCode = "PRIVILEGE_DENIED"
	ErrConfigError        ErrorCode = "CONFIG_ERROR"
	ErrAuthentication     ErrorCode = "AUTHENTICATION_FAILED"
)

var (
	// ErrUnauthorized is the only error an Authorizer returns to callers.
	// The specific cause is recorded in the security log only.
	ErrUnauthorized = errors.New("jwtauth: unauthorized")

	// ErrNotAuthenticated is returned by an Issuer when no token could be
	// issued for the presented credentials.
	ErrNotAuthenticated = errors.New("jwtauth: not authenticated")
)

// ValidationError represents a JWT validation error with a code and message
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ValidationError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(code ErrorCode, message string, internal error) *ValidationError {
	return &ValidationError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// errorCode extracts the error code from a validation error
func errorCode(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return string(valErr.Code)
	}
	return "UNKNOWN"
}
