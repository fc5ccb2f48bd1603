// Package models defines data structures for Nivesh
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO currency code from the supported set.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyINR Currency = "INR"
)

// SupportedCurrencies lists the currencies a holding may be denominated in.
var SupportedCurrencies = []Currency{CurrencyUSD, CurrencyINR}

// IsValid reports whether c is one of the supported currencies.
func (c Currency) IsValid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// InstrumentKind classifies a ticker's format so price lookups route to the
// right upstream source without re-sniffing the string on every call.
type InstrumentKind string

const (
	KindNone       InstrumentKind = "none"        // no ticker; cost-basis valuation only
	KindSchemeCode InstrumentKind = "scheme_code" // 6-digit mutual fund scheme code
	KindISIN       InstrumentKind = "isin"        // IN-prefixed ISIN
	KindTicker     InstrumentKind = "ticker"      // listed market ticker
)

var (
	schemeCodeRe = regexp.MustCompile(`^\d{6}$`)
	isinRe       = regexp.MustCompile(`^IN[A-Z0-9]{10}$`)
)

// DetectInstrumentKind derives the instrument kind from the ticker's shape.
func DetectInstrumentKind(ticker string) InstrumentKind {
	t := strings.TrimSpace(ticker)
	switch {
	case t == "":
		return KindNone
	case schemeCodeRe.MatchString(t):
		return KindSchemeCode
	case isinRe.MatchString(strings.ToUpper(t)):
		return KindISIN
	default:
		return KindTicker
	}
}

// Investment identifies a trackable asset. Name is the unique key; every
// Transaction references its owning Investment by name.
type Investment struct {
	Name     string         `json:"name" badgerhold:"key"`
	Ticker   string         `json:"ticker,omitempty"`
	Currency Currency       `json:"currency"`
	Kind     InstrumentKind `json:"kind"`

	// Long-run reference figures, descriptive only. Never used in computation.
	FiveYearReturnPct *decimal.Decimal `json:"five_year_return_pct,omitempty"`
	TenYearReturnPct  *decimal.Decimal `json:"ten_year_return_pct,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewInvestment builds an Investment with its instrument kind resolved once.
func NewInvestment(name, ticker string, currency Currency) Investment {
	now := time.Now().UTC()
	return Investment{
		Name:      name,
		Ticker:    strings.TrimSpace(ticker),
		Currency:  currency,
		Kind:      DetectInstrumentKind(ticker),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the fields a stored Investment must carry.
func (i Investment) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("investment name is required")
	}
	if !i.Currency.IsValid() {
		return fmt.Errorf("unsupported currency %q", i.Currency)
	}
	return nil
}

// HasTicker reports whether the investment can be market-priced.
func (i Investment) HasTicker() bool {
	return i.Kind != KindNone && i.Ticker != ""
}
