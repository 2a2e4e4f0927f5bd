package authpg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nstrange/spendtrack/internal/authkit"
)

const uniqueViolationCode = "23505"

// PostgresCredentialStore implements authkit.CredentialStore on a pgx pool.
type PostgresCredentialStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCredentialStore constructs a pgx-backed credential store.
func NewPostgresCredentialStore(pool *pgxpool.Pool) *PostgresCredentialStore {
	return &PostgresCredentialStore{pool: pool}
}

// FindByUsername returns the user or authkit.ErrUserNotFound.
func (store *PostgresCredentialStore) FindByUsername(ctx context.Context, username string) (*authkit.User, error) {
	row := store.pool.QueryRow(ctx, `
SELECT user_id, username, password, first_name, last_name, email, phone_number, roles
FROM users
WHERE username = $1
`, username)
	return scanUser(row, "authpg.users.find")
}

// FindByUserID returns the user owning the id or authkit.ErrUserNotFound.
func (store *PostgresCredentialStore) FindByUserID(ctx context.Context, userID string) (*authkit.User, error) {
	row := store.pool.QueryRow(ctx, `
SELECT user_id, username, password, first_name, last_name, email, phone_number, roles
FROM users
WHERE user_id = $1
`, userID)
	return scanUser(row, "authpg.users.find_by_id")
}

// ExistsByUsername reports whether a username is taken.
func (store *PostgresCredentialStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := store.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("authpg.users.exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new user; the unique username constraint rejects duplicates.
func (store *PostgresCredentialStore) Create(ctx context.Context, user *authkit.User) error {
	_, err := store.pool.Exec(ctx, `
INSERT INTO users (user_id, username, password, first_name, last_name, email, phone_number, roles)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, user.UserID, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Email, user.PhoneNumber, strings.Join(user.Roles, ","))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return &authkit.DuplicateUsernameError{Username: user.Username}
		}
		return fmt.Errorf("authpg.users.create: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row, errorCode string) (*authkit.User, error) {
	var user authkit.User
	var joinedRoles string
	scanErr := row.Scan(&user.UserID, &user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Email, &user.PhoneNumber, &joinedRoles)
	if scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", errorCode, authkit.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", errorCode, scanErr)
	}
	if joinedRoles != "" {
		user.Roles = strings.Split(joinedRoles, ",")
	}
	return &user, nil
}
