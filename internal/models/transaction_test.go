package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

var txDate = time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{
			name:    "no facets",
			tx:      Transaction{Holding: "VTI"},
			wantErr: true,
		},
		{
			name:    "missing holding",
			tx:      Transaction{Buy: &BuyFacet{Date: txDate, Quantity: dp("10"), Rate: d("5")}},
			wantErr: true,
		},
		{
			name:    "complete buy",
			tx:      Transaction{Holding: "VTI", Buy: &BuyFacet{Date: txDate, Quantity: dp("10"), Rate: d("5")}},
			wantErr: false,
		},
		{
			name:    "lump-sum buy without quantity",
			tx:      Transaction{Holding: "PPF", Buy: &BuyFacet{Date: txDate, Rate: d("150000")}},
			wantErr: false,
		},
		{
			name:    "buy missing date",
			tx:      Transaction{Holding: "VTI", Buy: &BuyFacet{Quantity: dp("10"), Rate: d("5")}},
			wantErr: true,
		},
		{
			name:    "buy missing rate",
			tx:      Transaction{Holding: "VTI", Buy: &BuyFacet{Date: txDate, Quantity: dp("10")}},
			wantErr: true,
		},
		{
			name:    "complete gain",
			tx:      Transaction{Holding: "PPF", Gain: &GainFacet{Date: txDate, Amount: d("1250")}},
			wantErr: false,
		},
		{
			name:    "gain missing amount",
			tx:      Transaction{Holding: "PPF", Gain: &GainFacet{Date: txDate}},
			wantErr: true,
		},
		{
			name: "buy and sell on one record",
			tx: Transaction{
				Holding: "VTI",
				Buy:     &BuyFacet{Date: txDate, Quantity: dp("10"), Rate: d("5")},
				Sell:    &SellFacet{Date: txDate.AddDate(0, 6, 0), Quantity: dp("4"), Rate: d("6")},
			},
			wantErr: false,
		},
		{
			name: "complete buy with incomplete sell",
			tx: Transaction{
				Holding: "VTI",
				Buy:     &BuyFacet{Date: txDate, Quantity: dp("10"), Rate: d("5")},
				Sell:    &SellFacet{Date: txDate.AddDate(0, 6, 0)},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		err := tt.tx.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestFacetComplete_NilReceiver(t *testing.T) {
	var b *BuyFacet
	var s *SellFacet
	var g *GainFacet
	if b.Complete() || s.Complete() || g.Complete() {
		t.Error("nil facets must not report complete")
	}
}

func TestBuyAmount(t *testing.T) {
	withQty := BuyFacet{Date: txDate, Quantity: dp("10"), Rate: d("5.5")}
	if got := withQty.Amount(); got.String() != "-55" {
		t.Errorf("buy amount = %s, want -55", got)
	}

	lump := BuyFacet{Date: txDate, Rate: d("150000")}
	if got := lump.Amount(); got.String() != "-150000" {
		t.Errorf("lump-sum buy amount = %s, want -150000", got)
	}
}

func TestSellAmount(t *testing.T) {
	withQty := SellFacet{Date: txDate, Quantity: dp("4"), Rate: d("6")}
	if got := withQty.Amount(); got.String() != "24" {
		t.Errorf("sell amount = %s, want 24", got)
	}

	lump := SellFacet{Date: txDate, Rate: d("50000")}
	if got := lump.Amount(); got.String() != "50000" {
		t.Errorf("lump-sum sell amount = %s, want 50000", got)
	}
}

func TestEarliestDate(t *testing.T) {
	buy := txDate
	sell := txDate.AddDate(0, 6, 0)
	gain := txDate.AddDate(0, -2, 0)

	tx := Transaction{
		Holding: "VTI",
		Buy:     &BuyFacet{Date: buy, Quantity: dp("10"), Rate: d("5")},
		Sell:    &SellFacet{Date: sell, Quantity: dp("4"), Rate: d("6")},
		Gain:    &GainFacet{Date: gain, Amount: d("12")},
	}
	if got := tx.EarliestDate(); !got.Equal(gain) {
		t.Errorf("EarliestDate = %v, want the gain date %v", got, gain)
	}

	empty := Transaction{Holding: "VTI"}
	if got := empty.EarliestDate(); !got.IsZero() {
		t.Errorf("EarliestDate = %v, want zero for a facetless record", got)
	}
}

func TestHeldQuantity(t *testing.T) {
	txs := []Transaction{
		{Holding: "VTI", Buy: &BuyFacet{Date: txDate, Quantity: dp("10"), Rate: d("5")}},
		{Holding: "VTI", Sell: &SellFacet{Date: txDate.AddDate(0, 3, 0), Quantity: dp("4"), Rate: d("6")}},
		{Holding: "VTI", Buy: &BuyFacet{Date: txDate.AddDate(0, 6, 0), Rate: d("500")}}, // lump-sum: no units
	}
	if got := HeldQuantity(txs); got.String() != "6" {
		t.Errorf("HeldQuantity = %s, want 6", got)
	}

	if got := HeldQuantity(nil); !got.IsZero() {
		t.Errorf("HeldQuantity = %s, want 0 for no transactions", got)
	}
}

func TestNewTransaction(t *testing.T) {
	tx := NewTransaction("VTI")
	if tx.ID == "" {
		t.Error("NewTransaction left ID empty")
	}
	if tx.Holding != "VTI" {
		t.Errorf("Holding = %q, want VTI", tx.Holding)
	}
	if tx.CreatedAt.IsZero() {
		t.Error("NewTransaction left CreatedAt zero")
	}

	other := NewTransaction("VTI")
	if other.ID == tx.ID {
		t.Error("consecutive transactions share an ID")
	}
}
