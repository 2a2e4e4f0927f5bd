// Package expense records and lists per-user spend entries behind the
// authentication gate.
package expense

import "time"

// DefaultCurrency is applied when a create request omits the currency.
const DefaultCurrency = "inr"

// Expense is one spend entry owned by a user.
type Expense struct {
	ID         uint
	ExternalID string
	UserID     string
	Amount     float64
	Merchant   string
	Currency   string
	CreatedAt  time.Time
}
