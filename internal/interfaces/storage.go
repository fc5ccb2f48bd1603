package interfaces

import (
	"context"

	"github.com/karpatel/nivesh/internal/models"
)

// LedgerStore persists investments and their transactions over durable
// keyed-record storage.
type LedgerStore interface {
	// GetInvestment retrieves one investment by name.
	GetInvestment(ctx context.Context, name string) (*models.Investment, error)

	// ListInvestments retrieves all investments.
	ListInvestments(ctx context.Context) ([]models.Investment, error)

	// SaveInvestment creates or replaces an investment.
	SaveInvestment(ctx context.Context, inv models.Investment) error

	// DeleteInvestment removes an investment. Its transactions remain
	// addressable by holding name; orphan cleanup is the caller's business.
	DeleteInvestment(ctx context.Context, name string) error

	// GetTransactions retrieves all transactions for one holding.
	GetTransactions(ctx context.Context, holding string) ([]models.Transaction, error)

	// SaveTransaction creates or replaces a transaction.
	SaveTransaction(ctx context.Context, tx models.Transaction) error

	// DeleteTransaction removes a transaction by id.
	DeleteTransaction(ctx context.Context, id string) error

	// Load retrieves the whole ledger: all investments plus transactions
	// grouped by holding name.
	Load(ctx context.Context) ([]models.Investment, map[string][]models.Transaction, error)

	// Close releases the underlying storage.
	Close() error
}

// RateCacheStore persists the rate cache as one keyed mapping. The provider
// loads it once at startup and writes it through after every successful
// fetch.
type RateCacheStore interface {
	// Load reads the full cache. A missing or unreadable store yields an
	// empty map, never an error the caller must handle as fatal.
	Load() (map[string]models.RateEntry, error)

	// Save writes the full cache durably before returning.
	Save(entries map[string]models.RateEntry) error
}
