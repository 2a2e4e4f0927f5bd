package authkit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestConfig() ServerConfig {
	return ServerConfig{
		JWTSigningKey: testSigningKey,
		JWTIssuer:     testIssuer,
		SessionTTL:    time.Minute,
		RefreshTTL:    100 * time.Minute,
	}
}

func seedUser(t *testing.T, credentials *MemoryCredentialStore, username string) *User {
	t.Helper()
	user := &User{
		UserID:      "id-" + username,
		Username:    username,
		FirstName:   "Test",
		LastName:    "User",
		Email:       username + "@example.com",
		PhoneNumber: 5551234567,
		Roles:       []string{DefaultRole},
	}
	if err := credentials.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func TestIssueRotatesPriorToken(t *testing.T) {
	credentials := NewMemoryCredentialStore()
	tokens := NewMemoryRefreshTokenStore()
	user := seedUser(t, credentials, "alice")

	clock := fixedClock{timestamp: time.Unix(1700000000, 0).UTC()}
	service := NewRefreshTokenService(credentials, tokens, clock, newTestConfig())

	first, firstErr := service.Issue(context.Background(), "alice")
	if firstErr != nil {
		t.Fatalf("first issue error: %v", firstErr)
	}
	second, secondErr := service.Issue(context.Background(), "alice")
	if secondErr != nil {
		t.Fatalf("second issue error: %v", secondErr)
	}

	if first.Token == second.Token {
		t.Fatalf("expected rotation to produce a different token string")
	}
	if live := tokens.CountForUser(user.UserID); live != 1 {
		t.Fatalf("expected exactly one live token after rotation, got %d", live)
	}
	if _, err := service.FindByToken(context.Background(), first.Token); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Fatalf("expected superseded token to be gone, got %v", err)
	}
	if _, err := service.FindByToken(context.Background(), second.Token); err != nil {
		t.Fatalf("expected current token to resolve, got %v", err)
	}
}

func TestIssueUnknownUser(t *testing.T) {
	service := NewRefreshTokenService(NewMemoryCredentialStore(), NewMemoryRefreshTokenStore(), fixedClock{timestamp: time.Unix(1700000000, 0)}, newTestConfig())

	if _, err := service.Issue(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIssueSetsExpiryFromClock(t *testing.T) {
	credentials := NewMemoryCredentialStore()
	seedUser(t, credentials, "alice")

	reference := time.Unix(1700000000, 0).UTC()
	configuration := newTestConfig()
	service := NewRefreshTokenService(credentials, NewMemoryRefreshTokenStore(), fixedClock{timestamp: reference}, configuration)

	record, issueErr := service.Issue(context.Background(), "alice")
	if issueErr != nil {
		t.Fatalf("issue error: %v", issueErr)
	}
	expected := reference.Add(configuration.RefreshTTL)
	if !record.ExpiryDate.Equal(expected) {
		t.Fatalf("expected expiry %v, got %v", expected, record.ExpiryDate)
	}
	if record.Token == "" {
		t.Fatalf("expected non-empty opaque token")
	}
}

func TestVerifyExpirationDeletesExpiredToken(t *testing.T) {
	credentials := NewMemoryCredentialStore()
	tokens := NewMemoryRefreshTokenStore()
	seedUser(t, credentials, "alice")

	issuedAt := time.Unix(1700000000, 0).UTC()
	service := NewRefreshTokenService(credentials, tokens, fixedClock{timestamp: issuedAt}, newTestConfig())

	record, issueErr := service.Issue(context.Background(), "alice")
	if issueErr != nil {
		t.Fatalf("issue error: %v", issueErr)
	}

	lateService := NewRefreshTokenService(credentials, tokens, fixedClock{timestamp: issuedAt.Add(200 * time.Minute)}, newTestConfig())
	_, expiredErr := lateService.VerifyExpiration(context.Background(), record)
	if !errors.Is(expiredErr, ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired, got %v", expiredErr)
	}
	if _, findErr := service.FindByToken(context.Background(), record.Token); !errors.Is(findErr, ErrRefreshTokenNotFound) {
		t.Fatalf("expected expired token to be deleted, got %v", findErr)
	}
}

func TestVerifyExpirationKeepsLiveToken(t *testing.T) {
	credentials := NewMemoryCredentialStore()
	tokens := NewMemoryRefreshTokenStore()
	seedUser(t, credentials, "alice")

	reference := time.Unix(1700000000, 0).UTC()
	service := NewRefreshTokenService(credentials, tokens, fixedClock{timestamp: reference}, newTestConfig())

	record, issueErr := service.Issue(context.Background(), "alice")
	if issueErr != nil {
		t.Fatalf("issue error: %v", issueErr)
	}

	verified, verifyErr := service.VerifyExpiration(context.Background(), record)
	if verifyErr != nil {
		t.Fatalf("unexpected error for live token: %v", verifyErr)
	}
	if verified.Token != record.Token {
		t.Fatalf("expected token returned unchanged")
	}
}
