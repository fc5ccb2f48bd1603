package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/common"
	"github.com/karpatel/nivesh/internal/models"
)

// --- Test helpers ---

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(common.NewSilentLogger(), filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func buyTx(holding string, date time.Time, qty, rate string) models.Transaction {
	tx := models.NewTransaction(holding)
	tx.Buy = &models.BuyFacet{Date: date, Quantity: decPtr(qty), Rate: decimal.RequireFromString(rate)}
	return tx
}

// --- Store tests ---

func TestStore_OpenClose(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(testLogger(), filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if store.DB() == nil {
		t.Fatal("expected non-nil DB")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{}
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil DB should not error: %v", err)
	}
}

// --- Ledger storage tests ---

func TestLedgerStorage_InvestmentCRUD(t *testing.T) {
	store := newTestStore(t)
	ls := NewLedgerStorage(store, testLogger())
	ctx := context.Background()

	// Get non-existent
	if _, err := ls.GetInvestment(ctx, "Vanguard Total"); err == nil {
		t.Fatal("expected error for non-existent investment")
	}

	// Save
	inv := models.NewInvestment("Vanguard Total", "VTI", models.CurrencyUSD)
	if err := ls.SaveInvestment(ctx, inv); err != nil {
		t.Fatalf("SaveInvestment failed: %v", err)
	}

	// Get existing
	got, err := ls.GetInvestment(ctx, "Vanguard Total")
	if err != nil {
		t.Fatalf("GetInvestment failed: %v", err)
	}
	if got.Ticker != "VTI" || got.Currency != models.CurrencyUSD {
		t.Errorf("unexpected investment: %+v", got)
	}
	if got.Kind != models.KindTicker {
		t.Errorf("kind = %s, want %s", got.Kind, models.KindTicker)
	}

	// List is sorted by name
	if err := ls.SaveInvestment(ctx, models.NewInvestment("Axis Bluechip", "120465", models.CurrencyINR)); err != nil {
		t.Fatalf("SaveInvestment failed: %v", err)
	}
	investments, err := ls.ListInvestments(ctx)
	if err != nil {
		t.Fatalf("ListInvestments failed: %v", err)
	}
	if len(investments) != 2 {
		t.Fatalf("expected 2 investments, got %d", len(investments))
	}
	if investments[0].Name != "Axis Bluechip" || investments[1].Name != "Vanguard Total" {
		t.Errorf("unexpected order: %s, %s", investments[0].Name, investments[1].Name)
	}

	// Delete
	if err := ls.DeleteInvestment(ctx, "Vanguard Total"); err != nil {
		t.Fatalf("DeleteInvestment failed: %v", err)
	}
	if _, err := ls.GetInvestment(ctx, "Vanguard Total"); err == nil {
		t.Fatal("expected error after delete")
	}

	// Delete non-existent is a no-op
	if err := ls.DeleteInvestment(ctx, "Vanguard Total"); err != nil {
		t.Fatalf("DeleteInvestment (repeat) failed: %v", err)
	}
}

func TestLedgerStorage_SaveInvestmentPreservesCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ls := NewLedgerStorage(store, testLogger())
	ctx := context.Background()

	inv := models.NewInvestment("Axis Bluechip", "120465", models.CurrencyINR)
	if err := ls.SaveInvestment(ctx, inv); err != nil {
		t.Fatalf("SaveInvestment failed: %v", err)
	}
	first, err := ls.GetInvestment(ctx, "Axis Bluechip")
	if err != nil {
		t.Fatalf("GetInvestment failed: %v", err)
	}

	updated := *first
	updated.Ticker = "120466"
	updated.Kind = models.DetectInstrumentKind(updated.Ticker)
	if err := ls.SaveInvestment(ctx, updated); err != nil {
		t.Fatalf("SaveInvestment (update) failed: %v", err)
	}

	second, err := ls.GetInvestment(ctx, "Axis Bluechip")
	if err != nil {
		t.Fatalf("GetInvestment failed: %v", err)
	}
	if second.Ticker != "120466" {
		t.Errorf("ticker = %s, want 120466", second.Ticker)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestLedgerStorage_TransactionsByHolding(t *testing.T) {
	store := newTestStore(t)
	ls := NewLedgerStorage(store, testLogger())
	ctx := context.Background()

	d1 := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	// Save out of date order, across two holdings
	for _, tx := range []models.Transaction{
		buyTx("Vanguard Total", d2, "5", "220"),
		buyTx("Vanguard Total", d1, "10", "200"),
		buyTx("Axis Bluechip", d3, "100", "45.50"),
	} {
		if err := ls.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}
	}

	transactions, err := ls.GetTransactions(ctx, "Vanguard Total")
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(transactions))
	}
	if !transactions[0].Buy.Date.Equal(d1) || !transactions[1].Buy.Date.Equal(d2) {
		t.Errorf("transactions not in date order: %v, %v", transactions[0].Buy.Date, transactions[1].Buy.Date)
	}
	if !transactions[0].Buy.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("quantity = %s, want 10", transactions[0].Buy.Quantity)
	}

	other, err := ls.GetTransactions(ctx, "Axis Bluechip")
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("expected 1 transaction for Axis Bluechip, got %d", len(other))
	}

	// Unknown holding yields an empty slice, not an error
	none, err := ls.GetTransactions(ctx, "Missing")
	if err != nil {
		t.Fatalf("GetTransactions for unknown holding failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no transactions, got %d", len(none))
	}
}

func TestLedgerStorage_DeleteTransaction(t *testing.T) {
	store := newTestStore(t)
	ls := NewLedgerStorage(store, testLogger())
	ctx := context.Background()

	tx := buyTx("Vanguard Total", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), "10", "200")
	if err := ls.SaveTransaction(ctx, tx); err != nil {
		t.Fatalf("SaveTransaction failed: %v", err)
	}
	if err := ls.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	transactions, err := ls.GetTransactions(ctx, "Vanguard Total")
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("expected no transactions after delete, got %d", len(transactions))
	}

	// Delete non-existent is a no-op
	if err := ls.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction (repeat) failed: %v", err)
	}
}

func TestLedgerStorage_Load(t *testing.T) {
	store := newTestStore(t)
	ls := NewLedgerStorage(store, testLogger())
	ctx := context.Background()

	if err := ls.SaveInvestment(ctx, models.NewInvestment("Vanguard Total", "VTI", models.CurrencyUSD)); err != nil {
		t.Fatalf("SaveInvestment failed: %v", err)
	}
	if err := ls.SaveInvestment(ctx, models.NewInvestment("Fixed Deposit", "", models.CurrencyINR)); err != nil {
		t.Fatalf("SaveInvestment failed: %v", err)
	}

	d1 := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, tx := range []models.Transaction{
		buyTx("Vanguard Total", d1, "10", "200"),
		buyTx("Vanguard Total", d2, "5", "220"),
	} {
		if err := ls.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}
	}

	investments, byHolding, err := ls.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(investments) != 2 {
		t.Fatalf("expected 2 investments, got %d", len(investments))
	}
	if len(byHolding["Vanguard Total"]) != 2 {
		t.Errorf("expected 2 transactions for Vanguard Total, got %d", len(byHolding["Vanguard Total"]))
	}
	if _, ok := byHolding["Fixed Deposit"]; ok {
		t.Error("holding without transactions should not appear in the map")
	}
}
