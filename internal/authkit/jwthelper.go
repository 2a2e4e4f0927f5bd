package authkit

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims are embedded in the signed access token. Roles are
// deliberately absent: the authentication gate loads them fresh per request.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
}

// MintAccessToken creates a signed HS256 access token for the subject.
func MintAccessToken(clock Clock, subject string, issuer string, signingKey []byte, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("jwt.mint.failure: subject must be non-empty")
	}
	issuedAt := clock.Now().UTC()
	expiresAt := issuedAt.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt.mint.failure: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken parses and validates a signed access token. Expiry is
// reported as ErrTokenExpired so callers can prompt a re-login; every other
// structural or cryptographic failure collapses to ErrTokenInvalid. When
// expectedSubject is non-empty the token subject must match it exactly.
// Verification is stateless and never touches a store.
func VerifyAccessToken(clock Clock, tokenString string, expectedSubject string, issuer string, signingKey []byte) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	parsedToken, parseErr := jwt.ParseWithClaims(tokenString, claims, func(parsed *jwt.Token) (interface{}, error) {
		return signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(clock.Now),
	)
	if parseErr != nil {
		if errors.Is(parseErr, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("jwt.verify: %w", ErrTokenExpired)
		}
		return nil, fmt.Errorf("jwt.verify: %w", ErrTokenInvalid)
	}
	if parsedToken == nil || !parsedToken.Valid {
		return nil, fmt.Errorf("jwt.verify: %w", ErrTokenInvalid)
	}
	if issuer != "" && claims.Issuer != issuer {
		return nil, fmt.Errorf("jwt.verify: %w", ErrTokenInvalid)
	}
	if expectedSubject != "" && claims.Subject != expectedSubject {
		return nil, fmt.Errorf("jwt.verify: %w", ErrSubjectMismatch)
	}
	return claims, nil
}
