package expense

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Store persists expenses.
type Store interface {
	Insert(ctx context.Context, entry *Expense) error
	ListByUserID(ctx context.Context, userID string) ([]Expense, error)
}

type expenseRecord struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID string    `gorm:"column:external_id;uniqueIndex;not null"`
	UserID     string    `gorm:"column:user_id;index;not null"`
	Amount     float64   `gorm:"column:amount;not null"`
	Merchant   string    `gorm:"column:merchant;not null"`
	Currency   string    `gorm:"column:currency;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (expenseRecord) TableName() string {
	return "expenses"
}

// GormStore implements Store on a shared GORM handle.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the expenses table and returns the store.
func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&expenseRecord{}); err != nil {
		return nil, fmt.Errorf("expense.store.migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Insert persists an expense and writes back the generated row id.
func (store *GormStore) Insert(ctx context.Context, entry *Expense) error {
	record := expenseRecord{
		ExternalID: entry.ExternalID,
		UserID:     entry.UserID,
		Amount:     entry.Amount,
		Merchant:   entry.Merchant,
		Currency:   entry.Currency,
		CreatedAt:  entry.CreatedAt.UTC(),
	}
	if err := store.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("expense.store.insert: %w", err)
	}
	entry.ID = record.ID
	return nil
}

// ListByUserID returns the user's expenses, newest first.
func (store *GormStore) ListByUserID(ctx context.Context, userID string) ([]Expense, error) {
	var records []expenseRecord
	err := store.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("expense.store.list: %w", err)
	}
	entries := make([]Expense, 0, len(records))
	for _, record := range records {
		entries = append(entries, Expense{
			ID:         record.ID,
			ExternalID: record.ExternalID,
			UserID:     record.UserID,
			Amount:     record.Amount,
			Merchant:   record.Merchant,
			Currency:   record.Currency,
			CreatedAt:  record.CreatedAt,
		})
	}
	return entries, nil
}

// MemoryStore keeps expenses in process memory, for tests and the
// default storeless run mode.
type MemoryStore struct {
	mutex      sync.RWMutex
	sequenceID uint
	byUser     map[string][]Expense
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string][]Expense)}
}

// Insert stores a copy of the expense and assigns a sequence id.
func (store *MemoryStore) Insert(_ context.Context, entry *Expense) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.sequenceID++
	entry.ID = store.sequenceID
	store.byUser[entry.UserID] = append(store.byUser[entry.UserID], *entry)
	return nil
}

// ListByUserID returns copies of the user's expenses, newest first.
func (store *MemoryStore) ListByUserID(_ context.Context, userID string) ([]Expense, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	stored := store.byUser[userID]
	entries := make([]Expense, len(stored))
	copy(entries, stored)
	for left, right := 0, len(entries)-1; left < right; left, right = left+1, right-1 {
		entries[left], entries[right] = entries[right], entries[left]
	}
	return entries, nil
}
