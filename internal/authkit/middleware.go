package authkit

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys under which the gate binds the authenticated identity.
const (
	ContextKeyUser   = "auth_user"
	ContextKeyClaims = "auth_claims"
)

// publicPaths is the static allow-list that bypasses token verification.
// Every other path requires a valid access token.
var publicPaths = map[string]struct{}{
	"/health":               {},
	"/ping":                 {},
	"/auth/v1/login":        {},
	"/auth/v1/signup":       {},
	"/auth/v1/refreshToken": {},
}

// GateConfig wires the authentication gate's collaborators.
type GateConfig struct {
	Server      ServerConfig
	Credentials CredentialStore
	Clock       Clock
	Logger      *zap.Logger
	Metrics     MetricsRecorder
}

// AuthenticationGate verifies the bearer access token on every request
// outside the allow-list and binds the freshly loaded identity to the
// request context. Each request starts unauthenticated; nothing is shared
// across requests.
func AuthenticationGate(configuration GateConfig) gin.HandlerFunc {
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := configuration.Metrics
	if metrics == nil {
		metrics = NewCounterMetrics()
	}
	return func(contextGin *gin.Context) {
		requestPath := contextGin.Request.URL.Path
		if _, public := publicPaths[requestPath]; public {
			contextGin.Next()
			return
		}

		tokenString, present := extractBearerToken(contextGin.GetHeader("Authorization"))
		if !present {
			// Missing or malformed header leaves the request unauthenticated;
			// outside the allow-list that means rejection.
			metrics.Increment("gate.unauthenticated")
			RespondError(contextGin, configuration.Clock, ErrAuthenticationRequired)
			return
		}

		claims, verifyErr := VerifyAccessToken(configuration.Clock, tokenString, "", configuration.Server.JWTIssuer, configuration.Server.JWTSigningKey)
		if verifyErr != nil {
			logger.Warn("access token rejected",
				zap.String("code", "gate.token_rejected"),
				zap.String("path", requestPath),
				zap.Error(verifyErr))
			metrics.Increment("gate.rejected")
			RespondError(contextGin, configuration.Clock, verifyErr)
			return
		}

		// Roles embedded at mint time could be stale; load the identity fresh.
		user, loadErr := configuration.Credentials.FindByUsername(contextGin.Request.Context(), claims.Subject)
		if loadErr != nil {
			logger.Warn("token subject has no identity",
				zap.String("code", "gate.unknown_subject"),
				zap.String("path", requestPath))
			metrics.Increment("gate.rejected")
			RespondError(contextGin, configuration.Clock, ErrTokenInvalid)
			return
		}

		contextGin.Set(ContextKeyUser, user)
		contextGin.Set(ContextKeyClaims, claims)
		contextGin.Next()
	}
}

// AuthenticatedUser returns the identity bound by the gate, if any.
func AuthenticatedUser(contextGin *gin.Context) (*User, bool) {
	value, found := contextGin.Get(ContextKeyUser)
	if !found {
		return nil, false
	}
	user, ok := value.(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

func extractBearerToken(headerValue string) (string, bool) {
	trimmed := strings.TrimSpace(headerValue)
	if trimmed == "" {
		return "", false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(trimmed, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(trimmed[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
