// Package interfaces defines service contracts for Nivesh
package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

// PriceSource supplies unit prices for one class of instrument. Each
// implementation binds to one or more upstream quote APIs; routing an
// instrument id to a source is the rate provider's job, not the source's.
type PriceSource interface {
	// FetchCurrent retrieves the latest unit price for an instrument.
	FetchCurrent(ctx context.Context, instrumentID string) (decimal.Decimal, error)

	// FetchHistorical retrieves the closing unit price on or shortly before
	// the given date.
	FetchHistorical(ctx context.Context, instrumentID string, date time.Time) (decimal.Decimal, error)
}

// FXSource supplies currency conversion rates.
type FXSource interface {
	// FetchRates retrieves current conversion rates from the base currency.
	FetchRates(ctx context.Context, base models.Currency) (map[models.Currency]decimal.Decimal, error)

	// FetchRatesOn retrieves conversion rates as of a past date.
	FetchRatesOn(ctx context.Context, base models.Currency, date time.Time) (map[models.Currency]decimal.Decimal, error)
}
