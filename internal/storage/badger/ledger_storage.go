package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/karpatel/nivesh/internal/common"
	"github.com/karpatel/nivesh/internal/models"
)

type ledgerStorage struct {
	store  *Store
	logger *common.Logger
}

// NewLedgerStorage creates a new LedgerStore backed by BadgerHold.
func NewLedgerStorage(store *Store, logger *common.Logger) *ledgerStorage {
	return &ledgerStorage{store: store, logger: logger}
}

func (s *ledgerStorage) GetInvestment(_ context.Context, name string) (*models.Investment, error) {
	var inv models.Investment
	err := s.store.db.Get(name, &inv)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("investment '%s' not found", name)
		}
		return nil, fmt.Errorf("failed to get investment '%s': %w", name, err)
	}
	return &inv, nil
}

func (s *ledgerStorage) ListInvestments(_ context.Context) ([]models.Investment, error) {
	var investments []models.Investment
	if err := s.store.db.Find(&investments, nil); err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	sort.Slice(investments, func(i, j int) bool {
		return investments[i].Name < investments[j].Name
	})
	return investments, nil
}

func (s *ledgerStorage) SaveInvestment(_ context.Context, inv models.Investment) error {
	// Read existing to preserve CreatedAt
	var existing models.Investment
	if err := s.store.db.Get(inv.Name, &existing); err == nil {
		inv.CreatedAt = existing.CreatedAt
	} else if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	inv.UpdatedAt = time.Now()

	if err := s.store.db.Upsert(inv.Name, inv); err != nil {
		return fmt.Errorf("failed to save investment: %w", err)
	}
	s.logger.Debug().Str("name", inv.Name).Str("ticker", inv.Ticker).Msg("Investment saved")
	return nil
}

func (s *ledgerStorage) DeleteInvestment(_ context.Context, name string) error {
	err := s.store.db.Delete(name, models.Investment{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete investment '%s': %w", name, err)
	}
	s.logger.Debug().Str("name", name).Msg("Investment deleted")
	return nil
}

func (s *ledgerStorage) GetTransactions(_ context.Context, holding string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	query := badgerhold.Where("Holding").Eq(holding).Index("Holding")
	if err := s.store.db.Find(&transactions, query); err != nil {
		return nil, fmt.Errorf("failed to get transactions for '%s': %w", holding, err)
	}
	sortTransactions(transactions)
	return transactions, nil
}

func (s *ledgerStorage) SaveTransaction(_ context.Context, tx models.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	if err := s.store.db.Upsert(tx.ID, tx); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	s.logger.Debug().Str("id", tx.ID).Str("holding", tx.Holding).Msg("Transaction saved")
	return nil
}

func (s *ledgerStorage) DeleteTransaction(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Transaction{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete transaction '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Transaction deleted")
	return nil
}

func (s *ledgerStorage) Load(ctx context.Context) ([]models.Investment, map[string][]models.Transaction, error) {
	investments, err := s.ListInvestments(ctx)
	if err != nil {
		return nil, nil, err
	}

	var transactions []models.Transaction
	if err := s.store.db.Find(&transactions, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	byHolding := make(map[string][]models.Transaction)
	for _, tx := range transactions {
		byHolding[tx.Holding] = append(byHolding[tx.Holding], tx)
	}
	for holding := range byHolding {
		sortTransactions(byHolding[holding])
	}

	s.logger.Debug().Int("investments", len(investments)).Int("transactions", len(transactions)).Msg("Ledger loaded")
	return investments, byHolding, nil
}

func (s *ledgerStorage) Close() error {
	return s.store.Close()
}

// sortTransactions orders by facet date, oldest first, so replays walk the
// holding's history in order.
func sortTransactions(transactions []models.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		di, dj := transactions[i].EarliestDate(), transactions[j].EarliestDate()
		if di.Equal(dj) {
			return transactions[i].CreatedAt.Before(transactions[j].CreatedAt)
		}
		return di.Before(dj)
	})
}
