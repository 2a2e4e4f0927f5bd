package authgorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nstrange/spendtrack/internal/authkit"
)

type refreshTokenRecord struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Token      string    `gorm:"column:token;uniqueIndex;not null"`
	UserID     string    `gorm:"column:user_id;uniqueIndex;not null"`
	ExpiryDate time.Time `gorm:"column:expiry_date;not null"`
}

func (refreshTokenRecord) TableName() string {
	return "refresh_tokens"
}

// RefreshTokenStore implements authkit.RefreshTokenStore on GORM. The unique
// index on user_id backs the one-active-token-per-user invariant; callers
// must delete before inserting, and each statement here runs in its own
// implicit transaction so the delete is applied before the insert executes.
type RefreshTokenStore struct {
	store *Store
}

// Insert persists a new refresh token row.
func (tokens *RefreshTokenStore) Insert(ctx context.Context, token *authkit.RefreshToken) error {
	record := refreshTokenRecord{
		Token:      token.Token,
		UserID:     token.UserID,
		ExpiryDate: token.ExpiryDate.UTC(),
	}
	if err := tokens.store.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("authgorm.refresh.insert.%s: %w", tokens.store.driverLabel, err)
	}
	token.ID = record.ID
	return nil
}

// FindByToken returns the row matching the exact token string.
func (tokens *RefreshTokenStore) FindByToken(ctx context.Context, tokenString string) (*authkit.RefreshToken, error) {
	var record refreshTokenRecord
	err := tokens.store.db.WithContext(ctx).Where("token = ?", tokenString).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("authgorm.refresh.find.%s: %w", tokens.store.driverLabel, authkit.ErrRefreshTokenNotFound)
		}
		return nil, fmt.Errorf("authgorm.refresh.find.%s: %w", tokens.store.driverLabel, err)
	}
	return &authkit.RefreshToken{
		ID:         record.ID,
		Token:      record.Token,
		UserID:     record.UserID,
		ExpiryDate: record.ExpiryDate,
	}, nil
}

// DeleteByUserID removes any rows owned by the user.
func (tokens *RefreshTokenStore) DeleteByUserID(ctx context.Context, userID string) error {
	result := tokens.store.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&refreshTokenRecord{})
	if result.Error != nil {
		return fmt.Errorf("authgorm.refresh.delete_by_user.%s: %w", tokens.store.driverLabel, result.Error)
	}
	return nil
}

// DeleteByToken removes the row matching the token string, if present.
func (tokens *RefreshTokenStore) DeleteByToken(ctx context.Context, tokenString string) error {
	result := tokens.store.db.WithContext(ctx).Where("token = ?", tokenString).Delete(&refreshTokenRecord{})
	if result.Error != nil {
		return fmt.Errorf("authgorm.refresh.delete_by_token.%s: %w", tokens.store.driverLabel, result.Error)
	}
	return nil
}
