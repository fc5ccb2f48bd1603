package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingMetrics is the per-holding valuation and return summary. XIRR fields
// are nil when the return is undefined (too few flows, all one sign, or a
// non-convergent solve), which is distinct from zero.
type HoldingMetrics struct {
	Holding       string          `json:"holding"`
	Currency      Currency        `json:"currency"`
	Quantity      decimal.Decimal `json:"quantity"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	PurchaseValue decimal.Decimal `json:"purchase_value"`
	Gain          decimal.Decimal `json:"gain"`
	MarketPriced  bool            `json:"market_priced"` // false = cost-basis fallback

	LifetimeXIRR *decimal.Decimal `json:"lifetime_xirr"`
	XIRR3M       *decimal.Decimal `json:"xirr_3m"`
	XIRR6M       *decimal.Decimal `json:"xirr_6m"`
	XIRR12M      *decimal.Decimal `json:"xirr_12m"`

	// Presentation hint: near-zero quantity and value. Exited holdings still
	// count toward lifetime totals.
	IsExited bool `json:"is_exited"`

	AsOf time.Time `json:"as_of"`
}

// CurrencyTotals aggregates all holdings denominated in one currency.
type CurrencyTotals struct {
	Currency      Currency         `json:"currency"`
	CurrentValue  decimal.Decimal  `json:"current_value"`
	PurchaseValue decimal.Decimal  `json:"purchase_value"`
	Gain          decimal.Decimal  `json:"gain"`
	BlendedXIRR   *decimal.Decimal `json:"blended_xirr"`
}

// PortfolioTotals is the cross-currency roll-up. GrandTotal and OverallXIRR
// convert at a single live FX rate, a best-effort display figure rather than
// a per-transaction conversion.
type PortfolioTotals struct {
	Holdings          []HoldingMetrics `json:"holdings"`
	Currencies        []CurrencyTotals `json:"currencies"`
	ReferenceCurrency Currency         `json:"reference_currency"`
	GrandTotal        decimal.Decimal  `json:"grand_total"`
	GrandPurchase     decimal.Decimal  `json:"grand_purchase"`
	GrandGain         decimal.Decimal  `json:"grand_gain"`
	OverallXIRR       *decimal.Decimal `json:"overall_xirr"`
	AsOf              time.Time        `json:"as_of"`
}

// TimelinePoint is one snapshot in the portfolio value timeline.
type TimelinePoint struct {
	Date      time.Time       `json:"date"`
	Value     decimal.Decimal `json:"value"`
	CostBasis decimal.Decimal `json:"cost_basis"`

	// Set when a significant new investment lands within a week of this
	// snapshot; used as a chart annotation.
	NewInvestment bool   `json:"new_investment,omitempty"`
	Event         string `json:"event,omitempty"`
}
