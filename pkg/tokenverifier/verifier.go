// Package tokenverifier validates bearer access tokens issued by the auth
// service. Sibling services import it to protect their own endpoints
// without a connection to the auth database.
package tokenverifier

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now returns the current UTC timestamp.
func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Config configures the Verifier.
type Config struct {
	SigningKey []byte
	Issuer     string
	Clock      Clock
}

// DefaultContextKey is used by GinMiddleware when no explicit key is provided.
const DefaultContextKey = "auth_claims"

const bearerPrefix = "Bearer "

// Sentinel errors exposed by the verifier.
var (
	ErrMissingSigningKey = errors.New("token.verifier.missing_signing_key")
	ErrMissingIssuer     = errors.New("token.verifier.missing_issuer")
	ErrMissingToken      = errors.New("token.verifier.missing_token")
	ErrMissingHeader     = errors.New("token.verifier.missing_header")
	ErrInvalidToken      = errors.New("token.verifier.invalid_token")
	ErrInvalidIssuer     = errors.New("token.verifier.invalid_issuer")
	ErrTokenExpired      = errors.New("token.verifier.expired")
)

// Verifier validates access tokens presented on the Authorization header.
type Verifier struct {
	signingKey []byte
	issuer     string
	clock      Clock
}

// Claims is the payload carried by access tokens. The subject holds the
// username the token was issued for.
type Claims struct {
	jwt.RegisteredClaims
}

// GetSubject returns the username the token was issued for.
func (claims *Claims) GetSubject() (string, error) {
	if claims == nil {
		return "", nil
	}
	return claims.Subject, nil
}

// GetExpiresAt returns the expiry timestamp.
func (claims *Claims) GetExpiresAt() time.Time {
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// New constructs a Verifier after validating the supplied configuration.
func New(configuration Config) (*Verifier, error) {
	if len(configuration.SigningKey) == 0 {
		return nil, fmt.Errorf("token.verifier.new: %w", ErrMissingSigningKey)
	}
	if strings.TrimSpace(configuration.Issuer) == "" {
		return nil, fmt.Errorf("token.verifier.new: %w", ErrMissingIssuer)
	}
	clock := configuration.Clock
	if clock == nil {
		clock = systemClock{}
	}
	return &Verifier{
		signingKey: configuration.SigningKey,
		issuer:     configuration.Issuer,
		clock:      clock,
	}, nil
}

// VerifyToken validates the provided JWT string and returns the parsed claims.
func (verifier *Verifier) VerifyToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrMissingToken)
	}
	parsedToken, parseErr := jwt.ParseWithClaims(tokenString, &Claims{}, func(parsed *jwt.Token) (interface{}, error) {
		return verifier.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time {
		return verifier.clock.Now()
	}))
	if parseErr != nil {
		if errors.Is(parseErr, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrTokenExpired)
		}
		return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrInvalidToken)
	}
	if parsedToken == nil || !parsedToken.Valid {
		return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrInvalidToken)
	}
	claims, ok := parsedToken.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrInvalidToken)
	}
	if claims.Issuer != verifier.issuer {
		return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrInvalidIssuer)
	}
	current := verifier.clock.Now()
	if claims.ExpiresAt != nil && current.After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrTokenExpired)
	}
	if claims.NotBefore != nil && current.Before(claims.NotBefore.Time) {
		return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrInvalidToken)
	}
	if claims.IssuedAt != nil && current.Before(claims.IssuedAt.Time) {
		return nil, fmt.Errorf("token.verifier.verify_token: %w", ErrInvalidToken)
	}
	return claims, nil
}

// VerifyRequest reads the bearer token from the Authorization header and
// validates it.
func (verifier *Verifier) VerifyRequest(request *http.Request) (*Claims, error) {
	if request == nil {
		return nil, fmt.Errorf("token.verifier.verify_request: %w", ErrMissingToken)
	}
	headerValue := request.Header.Get("Authorization")
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return nil, fmt.Errorf("token.verifier.verify_request: %w", ErrMissingHeader)
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	if tokenString == "" {
		return nil, fmt.Errorf("token.verifier.verify_request: %w", ErrMissingHeader)
	}
	return verifier.VerifyToken(tokenString)
}

// GinMiddleware returns a Gin middleware that validates the bearer token and
// injects claims under the supplied context key.
func (verifier *Verifier) GinMiddleware(contextKey string) gin.HandlerFunc {
	if strings.TrimSpace(contextKey) == "" {
		contextKey = DefaultContextKey
	}
	return func(contextGin *gin.Context) {
		claims, err := verifier.VerifyRequest(contextGin.Request)
		if err != nil {
			contextGin.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		contextGin.Set(contextKey, claims)
		contextGin.Next()
	}
}
