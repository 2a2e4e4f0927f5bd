package expense

import (
	"context"
	"testing"
	"time"
)

type fixedClock struct {
	timestamp time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.timestamp
}

func TestCreateAppliesDefaults(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	service := NewService(NewMemoryStore(), fixedClock{timestamp: now})

	entry, err := service.Create(context.Background(), "user-1", CreateInput{Amount: 249.50, Merchant: "Chai Point"})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if entry.Currency != DefaultCurrency {
		t.Fatalf("expected default currency %q, got %q", DefaultCurrency, entry.Currency)
	}
	if !entry.CreatedAt.Equal(now) {
		t.Fatalf("expected created-at from the clock, got %v", entry.CreatedAt)
	}
	if entry.ExternalID == "" {
		t.Fatalf("expected a generated external id")
	}
	if entry.UserID != "user-1" {
		t.Fatalf("expected the caller's user id, got %q", entry.UserID)
	}
}

func TestCreateKeepsExplicitCurrency(t *testing.T) {
	service := NewService(NewMemoryStore(), fixedClock{timestamp: time.Unix(1700000000, 0).UTC()})

	entry, err := service.Create(context.Background(), "user-1", CreateInput{Amount: 12, Merchant: "Cafe", Currency: "usd"})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if entry.Currency != "usd" {
		t.Fatalf("expected explicit currency to survive, got %q", entry.Currency)
	}
}

func TestCreateGeneratesDistinctExternalIDs(t *testing.T) {
	service := NewService(NewMemoryStore(), fixedClock{timestamp: time.Unix(1700000000, 0).UTC()})
	requestContext := context.Background()

	first, _ := service.Create(requestContext, "user-1", CreateInput{Amount: 1, Merchant: "A"})
	second, _ := service.Create(requestContext, "user-1", CreateInput{Amount: 2, Merchant: "B"})
	if first.ExternalID == second.ExternalID {
		t.Fatalf("expected distinct external ids, both were %q", first.ExternalID)
	}
}

func TestListReturnsOnlyOwnExpensesNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	service := NewService(store, fixedClock{timestamp: time.Unix(1700000000, 0).UTC()})
	requestContext := context.Background()

	if _, err := service.Create(requestContext, "user-1", CreateInput{Amount: 10, Merchant: "First"}); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if _, err := service.Create(requestContext, "user-1", CreateInput{Amount: 20, Merchant: "Second"}); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if _, err := service.Create(requestContext, "user-2", CreateInput{Amount: 99, Merchant: "Other"}); err != nil {
		t.Fatalf("create error: %v", err)
	}

	entries, listErr := service.List(requestContext, "user-1")
	if listErr != nil {
		t.Fatalf("list error: %v", listErr)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Merchant != "Second" || entries[1].Merchant != "First" {
		t.Fatalf("expected newest first ordering, got %v then %v", entries[0].Merchant, entries[1].Merchant)
	}
	for _, entry := range entries {
		if entry.UserID != "user-1" {
			t.Fatalf("leaked foreign expense: %+v", entry)
		}
	}
}
