package authkit

import (
	"context"
	"sync"
)

// MemoryCredentialStore keeps users in memory, for tests and dev runs.
type MemoryCredentialStore struct {
	mutex      sync.Mutex
	byUsername map[string]*User
	byUserID   map[string]*User
}

// NewMemoryCredentialStore creates an empty in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		byUsername: make(map[string]*User),
		byUserID:   make(map[string]*User),
	}
}

// FindByUsername returns a copy of the stored user or ErrUserNotFound.
func (store *MemoryCredentialStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	user, ok := store.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// FindByUserID returns a copy of the stored user or ErrUserNotFound.
func (store *MemoryCredentialStore) FindByUserID(ctx context.Context, userID string) (*User, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	user, ok := store.byUserID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// ExistsByUsername reports whether the username is taken.
func (store *MemoryCredentialStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	_, ok := store.byUsername[username]
	return ok, nil
}

// Create inserts a new user, rejecting duplicate usernames.
func (store *MemoryCredentialStore) Create(ctx context.Context, user *User) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if _, exists := store.byUsername[user.Username]; exists {
		return &DuplicateUsernameError{Username: user.Username}
	}
	clone := *user
	store.byUsername[clone.Username] = &clone
	store.byUserID[clone.UserID] = &clone
	return nil
}

// Count returns the number of stored users.
func (store *MemoryCredentialStore) Count() int {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return len(store.byUsername)
}

// MemoryRefreshTokenStore keeps refresh token rows in memory.
type MemoryRefreshTokenStore struct {
	mutex      sync.Mutex
	byToken    map[string]*RefreshToken
	sequenceID uint
}

// NewMemoryRefreshTokenStore creates an empty in-memory refresh token store.
func NewMemoryRefreshTokenStore() *MemoryRefreshTokenStore {
	return &MemoryRefreshTokenStore{byToken: make(map[string]*RefreshToken)}
}

// Insert persists a new refresh token row.
func (store *MemoryRefreshTokenStore) Insert(ctx context.Context, token *RefreshToken) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.sequenceID++
	clone := *token
	clone.ID = store.sequenceID
	token.ID = clone.ID
	store.byToken[clone.Token] = &clone
	return nil
}

// FindByToken returns the row matching the token string or ErrRefreshTokenNotFound.
func (store *MemoryRefreshTokenStore) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	record, ok := store.byToken[token]
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	clone := *record
	return &clone, nil
}

// DeleteByUserID removes every row owned by the user.
func (store *MemoryRefreshTokenStore) DeleteByUserID(ctx context.Context, userID string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	for tokenString, record := range store.byToken {
		if record.UserID == userID {
			delete(store.byToken, tokenString)
		}
	}
	return nil
}

// DeleteByToken removes the row matching the token string, if present.
func (store *MemoryRefreshTokenStore) DeleteByToken(ctx context.Context, token string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.byToken, token)
	return nil
}

// CountForUser returns how many rows the user currently owns.
func (store *MemoryRefreshTokenStore) CountForUser(userID string) int {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	total := 0
	for _, record := range store.byToken {
		if record.UserID == userID {
			total++
		}
	}
	return total
}
