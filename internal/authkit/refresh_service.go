package authkit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RefreshTokenService owns the single-active-refresh-token-per-user
// invariant on top of a RefreshTokenStore.
type RefreshTokenService struct {
	credentials CredentialStore
	tokens      RefreshTokenStore
	clock       Clock
	ttl         ServerConfig
}

// NewRefreshTokenService wires the service against its stores.
func NewRefreshTokenService(credentials CredentialStore, tokens RefreshTokenStore, clock Clock, configuration ServerConfig) *RefreshTokenService {
	return &RefreshTokenService{
		credentials: credentials,
		tokens:      tokens,
		clock:       clock,
		ttl:         configuration,
	}
}

// Issue rotates the user's refresh token: any prior token is deleted before
// the new row is inserted, so the uniqueness constraint on user ownership is
// never violated. The delete must be applied before the insert is attempted.
func (service *RefreshTokenService) Issue(ctx context.Context, username string) (*RefreshToken, error) {
	user, findErr := service.credentials.FindByUsername(ctx, username)
	if findErr != nil {
		return nil, fmt.Errorf("refresh_service.issue: %w", findErr)
	}
	if deleteErr := service.tokens.DeleteByUserID(ctx, user.UserID); deleteErr != nil {
		return nil, fmt.Errorf("refresh_service.issue: %w", deleteErr)
	}
	record := &RefreshToken{
		Token:      uuid.NewString(),
		UserID:     user.UserID,
		ExpiryDate: service.clock.Now().UTC().Add(service.ttl.RefreshTTL),
	}
	if insertErr := service.tokens.Insert(ctx, record); insertErr != nil {
		return nil, fmt.Errorf("refresh_service.issue: %w", insertErr)
	}
	return record, nil
}

// FindByToken looks up a refresh token by its exact string.
func (service *RefreshTokenService) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	record, err := service.tokens.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("refresh_service.find: %w", err)
	}
	return record, nil
}

// VerifyExpiration deletes an expired token and reports ErrRefreshTokenExpired;
// a live token is returned unchanged. The check-then-delete is not atomic
// against a concurrent refresh of the same token: the loser degrades to a
// not-found failure, which is acceptable for the single-device assumption.
func (service *RefreshTokenService) VerifyExpiration(ctx context.Context, record *RefreshToken) (*RefreshToken, error) {
	if record.ExpiryDate.Before(service.clock.Now().UTC()) {
		if deleteErr := service.tokens.DeleteByToken(ctx, record.Token); deleteErr != nil {
			return nil, fmt.Errorf("refresh_service.verify_expiration: %w", deleteErr)
		}
		return nil, fmt.Errorf("refresh_service.verify_expiration: %w", ErrRefreshTokenExpired)
	}
	return record, nil
}
