package expense

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nstrange/spendtrack/internal/authkit"
)

// CreateInput carries the client-supplied fields of a new expense.
type CreateInput struct {
	Amount   float64
	Merchant string
	Currency string
}

// Service applies expense defaults and delegates persistence.
type Service struct {
	store Store
	clock authkit.Clock
}

// NewService wires a Service.
func NewService(store Store, clock authkit.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// Create records an expense for the user. Currency defaults to
// DefaultCurrency and created-at defaults to the current time.
func (service *Service) Create(ctx context.Context, userID string, input CreateInput) (*Expense, error) {
	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	entry := &Expense{
		ExternalID: uuid.NewString(),
		UserID:     userID,
		Amount:     input.Amount,
		Merchant:   input.Merchant,
		Currency:   currency,
		CreatedAt:  service.clock.Now().UTC(),
	}
	if err := service.store.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("expense.create: %w", err)
	}
	return entry, nil
}

// List returns the user's expenses, newest first.
func (service *Service) List(ctx context.Context, userID string) ([]Expense, error) {
	entries, err := service.store.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("expense.list: %w", err)
	}
	return entries, nil
}
