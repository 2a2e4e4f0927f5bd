package authkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenPair is the result of a successful login, signup, or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// SessionService orchestrates credential verification and token issuance.
type SessionService struct {
	credentials CredentialStore
	refresh     *RefreshTokenService
	hasher      PasswordHasher
	clock       Clock
	config      ServerConfig
	logger      *zap.Logger
	metrics     MetricsRecorder
}

// NewSessionService wires the login/signup/refresh flows.
func NewSessionService(credentials CredentialStore, refresh *RefreshTokenService, hasher PasswordHasher, clock Clock, configuration ServerConfig, logger *zap.Logger, metrics MetricsRecorder) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewCounterMetrics()
	}
	return &SessionService{
		credentials: credentials,
		refresh:     refresh,
		hasher:      hasher,
		clock:       clock,
		config:      configuration,
		logger:      logger,
		metrics:     metrics,
	}
}

// Login verifies credentials and issues a fresh token pair. Unknown username
// and wrong password are distinguished in logs but collapse to
// ErrInvalidCredentials for the client, so usernames cannot be enumerated.
func (service *SessionService) Login(ctx context.Context, username string, password string) (TokenPair, error) {
	user, findErr := service.credentials.FindByUsername(ctx, username)
	if findErr != nil {
		if errors.Is(findErr, ErrUserNotFound) {
			service.logger.Warn("login failed",
				zap.String("code", "session.login.unknown_user"),
				zap.String("username", username))
			service.metrics.Increment("login.failure")
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("session.login: %w", findErr)
	}
	if !service.hasher.Verify(user.PasswordHash, password) {
		service.logger.Warn("login failed",
			zap.String("code", "session.login.bad_password"),
			zap.String("username", username))
		service.metrics.Increment("login.failure")
		return TokenPair{}, ErrInvalidCredentials
	}
	pair, issueErr := service.issueTokens(ctx, user)
	if issueErr != nil {
		return TokenPair{}, issueErr
	}
	service.metrics.Increment("login.success")
	return pair, nil
}

// Signup validates the profile, creates the user with a hashed password and
// the default role, then issues tokens exactly like login.
func (service *SessionService) Signup(ctx context.Context, request SignupRequest) (TokenPair, error) {
	if validateErr := ValidateSignupRequest(request); validateErr != nil {
		return TokenPair{}, validateErr
	}

	taken, existsErr := service.credentials.ExistsByUsername(ctx, request.Username)
	if existsErr != nil {
		return TokenPair{}, fmt.Errorf("session.signup: %w", existsErr)
	}
	if taken {
		service.metrics.Increment("signup.conflict")
		return TokenPair{}, &DuplicateUsernameError{Username: request.Username}
	}

	hashedPassword, hashErr := service.hasher.Hash(request.Password)
	if hashErr != nil {
		return TokenPair{}, fmt.Errorf("session.signup: %w", hashErr)
	}

	user := &User{
		UserID:       uuid.NewString(),
		Username:     request.Username,
		PasswordHash: hashedPassword,
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		Email:        request.Email,
		PhoneNumber:  request.PhoneNumber,
		Roles:        []string{DefaultRole},
	}
	if createErr := service.credentials.Create(ctx, user); createErr != nil {
		var duplicate *DuplicateUsernameError
		if errors.As(createErr, &duplicate) {
			service.metrics.Increment("signup.conflict")
			return TokenPair{}, duplicate
		}
		return TokenPair{}, fmt.Errorf("session.signup: %w", createErr)
	}

	service.logger.Info("user registered",
		zap.String("code", "session.signup.created"),
		zap.String("user_id", user.UserID))

	pair, issueErr := service.issueTokens(ctx, user)
	if issueErr != nil {
		return TokenPair{}, issueErr
	}
	service.metrics.Increment("signup.success")
	return pair, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token string itself is returned unchanged: rotation happens on login and
// signup only.
func (service *SessionService) Refresh(ctx context.Context, refreshTokenString string) (TokenPair, error) {
	record, findErr := service.refresh.FindByToken(ctx, refreshTokenString)
	if findErr != nil {
		service.metrics.Increment("refresh.failure")
		return TokenPair{}, findErr
	}
	record, expiryErr := service.refresh.VerifyExpiration(ctx, record)
	if expiryErr != nil {
		service.metrics.Increment("refresh.failure")
		return TokenPair{}, expiryErr
	}

	owner, ownerErr := service.findUserByID(ctx, record.UserID)
	if ownerErr != nil {
		service.metrics.Increment("refresh.failure")
		return TokenPair{}, ownerErr
	}

	accessToken, _, mintErr := MintAccessToken(service.clock, owner.Username, service.config.JWTIssuer, service.config.JWTSigningKey, service.config.SessionTTL)
	if mintErr != nil {
		return TokenPair{}, fmt.Errorf("session.refresh: %w", mintErr)
	}
	service.metrics.Increment("refresh.success")
	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: record.Token,
		UserID:       owner.UserID,
	}, nil
}

func (service *SessionService) issueTokens(ctx context.Context, user *User) (TokenPair, error) {
	accessToken, _, mintErr := MintAccessToken(service.clock, user.Username, service.config.JWTIssuer, service.config.JWTSigningKey, service.config.SessionTTL)
	if mintErr != nil {
		return TokenPair{}, fmt.Errorf("session.issue_tokens: %w", mintErr)
	}
	refreshToken, issueErr := service.refresh.Issue(ctx, user.Username)
	if issueErr != nil {
		return TokenPair{}, fmt.Errorf("session.issue_tokens: %w", issueErr)
	}
	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		UserID:       user.UserID,
	}, nil
}

func (service *SessionService) findUserByID(ctx context.Context, userID string) (*User, error) {
	user, err := service.credentials.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("session.find_owner: %w", err)
	}
	return user, nil
}
