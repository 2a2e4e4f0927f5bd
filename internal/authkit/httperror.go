package authkit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const errorTimestampLayout = "2006-01-02 15:04:05"

// ErrorBody is the wire shape of every non-2xx response.
type ErrorBody struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

// Client-visible messages for the closed error-kind set. Security-sensitive
// kinds share a message on purpose; internals stay in the logs.
const (
	messageInvalidCredentials     = "Invalid username or password"
	messageRefreshTokenNotFound   = "Refresh token not found. Please login again"
	messageRefreshTokenExpired    = "Refresh token has expired. Please make a new sign-in request"
	messageTokenExpired           = "JWT token has expired. Please login again"
	messageTokenInvalid           = "Invalid JWT token"
	messageAuthenticationRequired = "Authentication required. Please login."
	messageMalformedBody          = "Malformed JSON request body"
	messageInternal               = "An unexpected error occurred. Please try again later"
)

// RespondError is the single boundary translating domain errors to HTTP.
// It aborts the request with the mapped status and the standard error body.
func RespondError(contextGin *gin.Context, clock Clock, err error) {
	status, message := mapDomainError(err)
	contextGin.AbortWithStatusJSON(status, ErrorBody{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      contextGin.Request.URL.Path,
		Timestamp: clock.Now().UTC().Format(errorTimestampLayout),
	})
}

func mapDomainError(err error) (int, string) {
	var duplicate *DuplicateUsernameError
	if errors.As(err, &duplicate) {
		return http.StatusConflict, duplicate.Error()
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Error()
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, messageInvalidCredentials
	case errors.Is(err, ErrRefreshTokenNotFound):
		return http.StatusForbidden, messageRefreshTokenNotFound
	case errors.Is(err, ErrRefreshTokenExpired):
		return http.StatusForbidden, messageRefreshTokenExpired
	case errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized, messageTokenExpired
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrSubjectMismatch):
		return http.StatusUnauthorized, messageTokenInvalid
	case errors.Is(err, ErrAuthenticationRequired):
		return http.StatusUnauthorized, messageAuthenticationRequired
	case errors.Is(err, ErrMalformedRequestBody):
		return http.StatusBadRequest, messageMalformedBody
	default:
		return http.StatusInternalServerError, messageInternal
	}
}
