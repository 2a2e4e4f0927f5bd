package authkit

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the closed set of domain failures. The HTTP boundary
// in httperror.go is the single place translating these to responses.
var (
	// ErrInvalidCredentials covers both unknown username and wrong password.
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")
	// ErrUserNotFound indicates no user record matched the username.
	ErrUserNotFound = errors.New("auth.user_not_found")
	// ErrRefreshTokenNotFound indicates no refresh token matched the provided string.
	ErrRefreshTokenNotFound = errors.New("refresh_store.not_found")
	// ErrRefreshTokenExpired indicates the refresh token exceeded its expiry and was deleted.
	ErrRefreshTokenExpired = errors.New("refresh_store.expired")
	// ErrTokenExpired indicates the access token expiry has elapsed.
	ErrTokenExpired = errors.New("jwt.expired")
	// ErrTokenInvalid covers malformed tokens and signature failures.
	ErrTokenInvalid = errors.New("jwt.invalid")
	// ErrSubjectMismatch indicates the token subject disagrees with the expected identity.
	ErrSubjectMismatch = errors.New("jwt.subject_mismatch")
	// ErrAuthenticationRequired indicates a protected path was hit without a credential.
	ErrAuthenticationRequired = errors.New("auth.authentication_required")
	// ErrMalformedRequestBody indicates the request body could not be decoded.
	ErrMalformedRequestBody = errors.New("http.malformed_body")
)

// DuplicateUsernameError reports a signup attempt against a taken username.
type DuplicateUsernameError struct {
	Username string
}

func (err *DuplicateUsernameError) Error() string {
	return fmt.Sprintf("User with username '%s' already exists", err.Username)
}

// FieldError pairs an offending request field with its message.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates per-field signup validation failures.
type ValidationError struct {
	Fields []FieldError
}

func (err *ValidationError) Error() string {
	parts := make([]string, 0, len(err.Fields))
	for _, fieldError := range err.Fields {
		parts = append(parts, fieldError.Field+": "+fieldError.Message)
	}
	return strings.Join(parts, "; ")
}
