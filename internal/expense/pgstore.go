package expense

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx pool, for deployments running
// the auth stores through pgx as well.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore ensures the expenses table exists and returns the store.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS expenses (
    id BIGSERIAL PRIMARY KEY,
    external_id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    merchant TEXT NOT NULL,
    currency TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_expenses_user ON expenses (user_id);
`)
	if err != nil {
		return nil, fmt.Errorf("expense.pgstore.schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Insert persists an expense and writes back the generated row id.
func (store *PostgresStore) Insert(ctx context.Context, entry *Expense) error {
	row := store.pool.QueryRow(ctx, `
INSERT INTO expenses (external_id, user_id, amount, merchant, currency, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`, entry.ExternalID, entry.UserID, entry.Amount, entry.Merchant, entry.Currency, entry.CreatedAt.UTC())
	if err := row.Scan(&entry.ID); err != nil {
		return fmt.Errorf("expense.pgstore.insert: %w", err)
	}
	return nil
}

// ListByUserID returns the user's expenses, newest first.
func (store *PostgresStore) ListByUserID(ctx context.Context, userID string) ([]Expense, error) {
	rows, queryErr := store.pool.Query(ctx, `
SELECT id, external_id, user_id, amount, merchant, currency, created_at
FROM expenses
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if queryErr != nil {
		return nil, fmt.Errorf("expense.pgstore.list: %w", queryErr)
	}
	defer rows.Close()

	var entries []Expense
	for rows.Next() {
		var entry Expense
		if scanErr := rows.Scan(&entry.ID, &entry.ExternalID, &entry.UserID, &entry.Amount, &entry.Merchant, &entry.Currency, &entry.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("expense.pgstore.list: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("expense.pgstore.list: %w", rowsErr)
	}
	return entries, nil
}
