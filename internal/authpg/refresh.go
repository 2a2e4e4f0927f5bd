package authpg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nstrange/spendtrack/internal/authkit"
)

// PostgresRefreshTokenStore implements authkit.RefreshTokenStore on a pgx pool.
type PostgresRefreshTokenStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRefreshTokenStore constructs a pgx-backed refresh token store.
func NewPostgresRefreshTokenStore(pool *pgxpool.Pool) *PostgresRefreshTokenStore {
	return &PostgresRefreshTokenStore{pool: pool}
}

// Insert persists a new refresh token row and writes back the generated id.
func (store *PostgresRefreshTokenStore) Insert(ctx context.Context, token *authkit.RefreshToken) error {
	row := store.pool.QueryRow(ctx, `
INSERT INTO refresh_tokens (token, user_id, expiry_date)
VALUES ($1, $2, $3)
RETURNING id
`, token.Token, token.UserID, token.ExpiryDate.UTC())
	if err := row.Scan(&token.ID); err != nil {
		return fmt.Errorf("authpg.refresh.insert: %w", err)
	}
	return nil
}

// FindByToken returns the row matching the exact token string.
func (store *PostgresRefreshTokenStore) FindByToken(ctx context.Context, tokenString string) (*authkit.RefreshToken, error) {
	var record authkit.RefreshToken
	row := store.pool.QueryRow(ctx, `
SELECT id, token, user_id, expiry_date
FROM refresh_tokens
WHERE token = $1
`, tokenString)
	if scanErr := row.Scan(&record.ID, &record.Token, &record.UserID, &record.ExpiryDate); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil, fmt.Errorf("authpg.refresh.find: %w", authkit.ErrRefreshTokenNotFound)
		}
		return nil, fmt.Errorf("authpg.refresh.find: %w", scanErr)
	}
	return &record, nil
}

// DeleteByUserID removes any rows owned by the user.
func (store *PostgresRefreshTokenStore) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := store.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("authpg.refresh.delete_by_user: %w", err)
	}
	return nil
}

// DeleteByToken removes the row matching the token string, if present.
func (store *PostgresRefreshTokenStore) DeleteByToken(ctx context.Context, tokenString string) error {
	if _, err := store.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, tokenString); err != nil {
		return fmt.Errorf("authpg.refresh.delete_by_token: %w", err)
	}
	return nil
}
