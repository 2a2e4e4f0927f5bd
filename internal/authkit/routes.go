package authkit

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenResponse is the success body for signup, login, and refresh.
// UserID is omitted from the refresh response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
	UserID      string `json:"user_id,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	Token string `json:"token"`
}

// MountAuthRoutes registers the auth endpoints plus the health probes.
// The protected /auth/v1/ping handler expects the AuthenticationGate to run
// ahead of it.
func MountAuthRoutes(router gin.IRouter, sessions *SessionService, clock Clock, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	router.POST("/auth/v1/signup", func(contextGin *gin.Context) {
		var inbound SignupRequest
		if bindErr := contextGin.ShouldBindJSON(&inbound); bindErr != nil {
			RespondError(contextGin, clock, ErrMalformedRequestBody)
			return
		}
		pair, signupErr := sessions.Signup(contextGin.Request.Context(), inbound)
		if signupErr != nil {
			logAuthFailure(logger, "signup", signupErr)
			RespondError(contextGin, clock, signupErr)
			return
		}
		contextGin.JSON(http.StatusOK, TokenResponse{
			AccessToken: pair.AccessToken,
			Token:       pair.RefreshToken,
			UserID:      pair.UserID,
		})
	})

	router.POST("/auth/v1/login", func(contextGin *gin.Context) {
		var inbound loginRequest
		if bindErr := contextGin.ShouldBindJSON(&inbound); bindErr != nil {
			RespondError(contextGin, clock, ErrMalformedRequestBody)
			return
		}
		if validationErr := validateLoginRequest(inbound); validationErr != nil {
			RespondError(contextGin, clock, validationErr)
			return
		}
		pair, loginErr := sessions.Login(contextGin.Request.Context(), inbound.Username, inbound.Password)
		if loginErr != nil {
			logAuthFailure(logger, "login", loginErr)
			RespondError(contextGin, clock, loginErr)
			return
		}
		contextGin.JSON(http.StatusOK, TokenResponse{
			AccessToken: pair.AccessToken,
			Token:       pair.RefreshToken,
			UserID:      pair.UserID,
		})
	})

	router.POST("/auth/v1/refreshToken", func(contextGin *gin.Context) {
		var inbound refreshTokenRequest
		if bindErr := contextGin.ShouldBindJSON(&inbound); bindErr != nil {
			RespondError(contextGin, clock, ErrMalformedRequestBody)
			return
		}
		if strings.TrimSpace(inbound.Token) == "" {
			RespondError(contextGin, clock, &ValidationError{Fields: []FieldError{
				{Field: "token", Message: "Refresh token is required"},
			}})
			return
		}
		pair, refreshErr := sessions.Refresh(contextGin.Request.Context(), inbound.Token)
		if refreshErr != nil {
			logAuthFailure(logger, "refresh", refreshErr)
			RespondError(contextGin, clock, refreshErr)
			return
		}
		contextGin.JSON(http.StatusOK, TokenResponse{
			AccessToken: pair.AccessToken,
			Token:       pair.RefreshToken,
		})
	})

	router.GET("/auth/v1/ping", func(contextGin *gin.Context) {
		user, authenticated := AuthenticatedUser(contextGin)
		if !authenticated {
			contextGin.String(http.StatusUnauthorized, "Unauthorized")
			return
		}
		contextGin.String(http.StatusOK, "Ping Successful for user: %s", user.UserID)
	})

	router.GET("/ping", func(contextGin *gin.Context) {
		contextGin.String(http.StatusOK, "pong")
	})

	router.GET("/health", func(contextGin *gin.Context) {
		contextGin.JSON(http.StatusOK, true)
	})
}

func validateLoginRequest(inbound loginRequest) error {
	validation := &ValidationError{}
	if strings.TrimSpace(inbound.Username) == "" {
		validation.Fields = append(validation.Fields, FieldError{Field: "username", Message: "Username is required"})
	}
	if strings.TrimSpace(inbound.Password) == "" {
		validation.Fields = append(validation.Fields, FieldError{Field: "password", Message: "Password is required"})
	}
	if len(validation.Fields) == 0 {
		return nil
	}
	return validation
}

func logAuthFailure(logger *zap.Logger, flow string, err error) {
	logger.Warn("auth flow failed",
		zap.String("code", "routes."+flow+".failure"),
		zap.Error(err))
}
