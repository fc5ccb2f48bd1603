package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuyFacet records capital committed: quantity bought at a unit rate, or a
// lump-sum amount when no unit count is tracked (Quantity nil, Rate is the
// full cash amount).
type BuyFacet struct {
	Date     time.Time        `json:"date"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Rate     decimal.Decimal  `json:"rate"`
}

// SellFacet records capital returned, symmetric to BuyFacet.
type SellFacet struct {
	Date     time.Time        `json:"date"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Rate     decimal.Decimal  `json:"rate"`
}

// GainFacet records income not tied to a unit price: dividends, interest,
// redemption proceeds.
type GainFacet struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Transaction is one economic event against a holding. A record carries a
// non-empty set of facets; a single row may combine a buy and a sell (seen in
// imported ledgers), so facets are independent rather than mutually exclusive.
type Transaction struct {
	ID          string     `json:"id" badgerhold:"key"`
	Holding     string     `json:"holding" badgerhold:"index"`
	Buy         *BuyFacet  `json:"buy,omitempty"`
	Sell        *SellFacet `json:"sell,omitempty"`
	Gain        *GainFacet `json:"gain,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTransaction assigns a fresh id and creation timestamp.
func NewTransaction(holding string) Transaction {
	return Transaction{
		ID:        uuid.New().String(),
		Holding:   holding,
		CreatedAt: time.Now().UTC(),
	}
}

// Complete reports whether the facet has both a date and a rate.
func (b *BuyFacet) Complete() bool {
	return b != nil && !b.Date.IsZero() && !b.Rate.IsZero()
}

// Complete reports whether the facet has both a date and a rate.
func (s *SellFacet) Complete() bool {
	return s != nil && !s.Date.IsZero() && !s.Rate.IsZero()
}

// Complete reports whether the facet has both a date and an amount.
func (g *GainFacet) Complete() bool {
	return g != nil && !g.Date.IsZero() && !g.Amount.IsZero()
}

// Amount returns the signed cash value of the buy: -(quantity × rate), or
// -rate for lump-sum entries without a quantity.
func (b *BuyFacet) Amount() decimal.Decimal {
	if b.Quantity != nil {
		return b.Quantity.Mul(b.Rate).Neg()
	}
	return b.Rate.Neg()
}

// Amount returns the signed cash value of the sell: quantity × rate, or the
// rate alone for lump-sum entries.
func (s *SellFacet) Amount() decimal.Decimal {
	if s.Quantity != nil {
		return s.Quantity.Mul(s.Rate)
	}
	return s.Rate
}

// Validate enforces the completeness invariant before a transaction enters
// the ledger: at least one facet, and every present facet fully populated.
func (t Transaction) Validate() error {
	if t.Holding == "" {
		return fmt.Errorf("transaction must name its holding")
	}
	if t.Buy == nil && t.Sell == nil && t.Gain == nil {
		return fmt.Errorf("transaction must carry at least one of buy, sell, gain")
	}
	if t.Buy != nil && !t.Buy.Complete() {
		return fmt.Errorf("buy facet requires both date and rate")
	}
	if t.Sell != nil && !t.Sell.Complete() {
		return fmt.Errorf("sell facet requires both date and rate")
	}
	if t.Gain != nil && !t.Gain.Complete() {
		return fmt.Errorf("gain facet requires both date and amount")
	}
	return nil
}

// EarliestDate returns the earliest facet date, used for ledger ordering.
func (t Transaction) EarliestDate() time.Time {
	var earliest time.Time
	consider := func(d time.Time) {
		if d.IsZero() {
			return
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	if t.Buy != nil {
		consider(t.Buy.Date)
	}
	if t.Sell != nil {
		consider(t.Sell.Date)
	}
	if t.Gain != nil {
		consider(t.Gain.Date)
	}
	return earliest
}

// HeldQuantity replays buy and sell quantities across transactions and
// returns the cumulative unit count. Lump-sum facets without a quantity do
// not move the count.
func HeldQuantity(transactions []Transaction) decimal.Decimal {
	qty := decimal.Zero
	for _, t := range transactions {
		if t.Buy.Complete() && t.Buy.Quantity != nil {
			qty = qty.Add(*t.Buy.Quantity)
		}
		if t.Sell.Complete() && t.Sell.Quantity != nil {
			qty = qty.Sub(*t.Sell.Quantity)
		}
	}
	return qty
}
