package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

// RateProvider answers every price question in the system, consulting its
// cache before any network access. All upstream failures are normalized to
// a not-available error; callers fall back to cost basis.
type RateProvider interface {
	// CurrentRate returns the instrument's latest unit price. A fresh cache
	// entry short-circuits the fetch unless forceRefresh is set; a failed
	// fetch falls back to the stale cache.
	CurrentRate(ctx context.Context, instrumentID string, forceRefresh bool) (decimal.Decimal, error)

	// HistoricalRate returns the closing price for a past date. Cached
	// values are immutable and returned unconditionally.
	HistoricalRate(ctx context.Context, instrumentID string, date time.Time) (decimal.Decimal, error)

	// FXRate returns the current base→quote conversion rate.
	FXRate(ctx context.Context, base, quote models.Currency) (decimal.Decimal, error)

	// FXRateOn returns the base→quote conversion rate as of a past date.
	FXRateOn(ctx context.Context, base, quote models.Currency, date time.Time) (decimal.Decimal, error)
}

// PortfolioService computes valuation and return metrics over the ledger.
type PortfolioService interface {
	// ComputeHoldingMetrics values one holding and computes its lifetime and
	// windowed returns.
	ComputeHoldingMetrics(ctx context.Context, inv models.Investment, transactions []models.Transaction) models.HoldingMetrics

	// ComputePortfolioTotals rolls every holding up into currency-level and
	// grand totals with blended returns.
	ComputePortfolioTotals(ctx context.Context, investments []models.Investment, transactionsByHolding map[string][]models.Transaction) models.PortfolioTotals

	// GenerateTimeline produces dated portfolio value snapshots for charting.
	GenerateTimeline(ctx context.Context, investments []models.Investment, transactionsByHolding map[string][]models.Transaction, from, to time.Time) []models.TimelinePoint

	// RenderTimelineChart renders timeline points to a PNG image.
	RenderTimelineChart(points []models.TimelinePoint, title string) ([]byte, error)
}
