package authgorm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nstrange/spendtrack/internal/authkit"
)

type userRecord struct {
	UserID       string `gorm:"column:user_id;primaryKey"`
	Username     string `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password;not null"`
	FirstName    string `gorm:"column:first_name;not null"`
	LastName     string `gorm:"column:last_name;not null"`
	Email        string `gorm:"column:email;not null"`
	PhoneNumber  int64  `gorm:"column:phone_number;not null"`
	Roles        string `gorm:"column:roles;not null;default:''"`
}

func (userRecord) TableName() string {
	return "users"
}

// CredentialStore implements authkit.CredentialStore on GORM.
type CredentialStore struct {
	store *Store
}

// FindByUsername returns the user or authkit.ErrUserNotFound.
func (credentials *CredentialStore) FindByUsername(ctx context.Context, username string) (*authkit.User, error) {
	var record userRecord
	err := credentials.store.db.WithContext(ctx).Where("username = ?", username).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("authgorm.users.find.%s: %w", credentials.store.driverLabel, authkit.ErrUserNotFound)
		}
		return nil, fmt.Errorf("authgorm.users.find.%s: %w", credentials.store.driverLabel, err)
	}
	return recordToUser(record), nil
}

// FindByUserID returns the user owning the id or authkit.ErrUserNotFound.
func (credentials *CredentialStore) FindByUserID(ctx context.Context, userID string) (*authkit.User, error) {
	var record userRecord
	err := credentials.store.db.WithContext(ctx).Where("user_id = ?", userID).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("authgorm.users.find_by_id.%s: %w", credentials.store.driverLabel, authkit.ErrUserNotFound)
		}
		return nil, fmt.Errorf("authgorm.users.find_by_id.%s: %w", credentials.store.driverLabel, err)
	}
	return recordToUser(record), nil
}

// ExistsByUsername reports whether a username is taken.
func (credentials *CredentialStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var total int64
	err := credentials.store.db.WithContext(ctx).Model(&userRecord{}).Where("username = ?", username).Count(&total).Error
	if err != nil {
		return false, fmt.Errorf("authgorm.users.exists.%s: %w", credentials.store.driverLabel, err)
	}
	return total > 0, nil
}

// Create inserts a new user; the unique username index rejects duplicates.
func (credentials *CredentialStore) Create(ctx context.Context, user *authkit.User) error {
	record := userRecord{
		UserID:       user.UserID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		PhoneNumber:  user.PhoneNumber,
		Roles:        strings.Join(user.Roles, ","),
	}
	if err := credentials.store.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &authkit.DuplicateUsernameError{Username: user.Username}
		}
		return fmt.Errorf("authgorm.users.create.%s: %w", credentials.store.driverLabel, err)
	}
	return nil
}

func recordToUser(record userRecord) *authkit.User {
	var roles []string
	if record.Roles != "" {
		roles = strings.Split(record.Roles, ",")
	}
	return &authkit.User{
		UserID:       record.UserID,
		Username:     record.Username,
		PasswordHash: record.PasswordHash,
		FirstName:    record.FirstName,
		LastName:     record.LastName,
		Email:        record.Email,
		PhoneNumber:  record.PhoneNumber,
		Roles:        roles,
	}
}
