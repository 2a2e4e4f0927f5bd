package authkit

import "context"

// CredentialStore persists and retrieves user credential records.
type CredentialStore interface {
	// FindByUsername returns the user or ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByUserID returns the user owning the stable id or ErrUserNotFound.
	FindByUserID(ctx context.Context, userID string) (*User, error)
	// ExistsByUsername reports whether a username is taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Create inserts a new user; a taken username yields *DuplicateUsernameError.
	Create(ctx context.Context, user *User) error
}

// RefreshTokenStore persists refresh token rows. Enforcing the
// one-active-token-per-user invariant is the RefreshTokenService's job;
// implementations only need DeleteByUserID to be durably applied before a
// subsequent Insert observes the table.
type RefreshTokenStore interface {
	// Insert persists a new refresh token row.
	Insert(ctx context.Context, token *RefreshToken) error
	// FindByToken returns the row matching the exact token string or ErrRefreshTokenNotFound.
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	// DeleteByUserID removes any rows owned by the user.
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteByToken removes the row matching the token string, if present.
	DeleteByToken(ctx context.Context, token string) error
}
