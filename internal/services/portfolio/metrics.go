package portfolio

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

// Exit thresholds: a holding below both is tagged exited for display. It
// still counts toward lifetime totals.
var (
	exitedQtyThreshold   = decimal.RequireFromString("0.05")
	exitedValueThreshold = decimal.NewFromInt(1)
)

// ComputeHoldingMetrics values one holding and computes its lifetime and
// windowed returns. Valuation is uniform across holdings: quantity × current
// rate when the instrument is market-priced, cost basis otherwise, with
// accumulated gain income added on top either way.
func (s *Service) ComputeHoldingMetrics(ctx context.Context, inv models.Investment, transactions []models.Transaction) models.HoldingMetrics {
	today := s.today()
	pos := positionThrough(transactions, today)

	// Position value excludes gain income: gains enter XIRR series as their
	// own dated flows, so folding them into the terminal value would count
	// them twice.
	var (
		positionValue decimal.Decimal
		marketPriced  bool
	)
	if inv.HasTicker() && pos.qty.Sign() > 0 {
		if rate, err := s.rates.CurrentRate(ctx, inv.Ticker, false); err == nil {
			positionValue = pos.qty.Mul(rate)
			marketPriced = true
		} else {
			s.logger.Debug().Str("holding", inv.Name).Str("ticker", inv.Ticker).Msg("No current rate, valuing at cost basis")
		}
	}
	if !marketPriced {
		positionValue = pos.cost
	}

	currentValue := positionValue.Add(pos.gains)

	metrics := models.HoldingMetrics{
		Holding:       inv.Name,
		Currency:      inv.Currency,
		Quantity:      pos.qty,
		CurrentValue:  currentValue,
		PurchaseValue: pos.cost,
		Gain:          currentValue.Sub(pos.cost),
		MarketPriced:  marketPriced,
		IsExited:      pos.qty.LessThan(exitedQtyThreshold) && positionValue.LessThan(exitedValueThreshold),
		AsOf:          today,
	}

	metrics.LifetimeXIRR = InvestmentXIRR(transactions, positionValue, today)
	metrics.XIRR3M = s.windowXIRR(ctx, inv, transactions, today.AddDate(0, -3, 0), today, positionValue)
	metrics.XIRR6M = s.windowXIRR(ctx, inv, transactions, today.AddDate(0, -6, 0), today, positionValue)
	metrics.XIRR12M = s.windowXIRR(ctx, inv, transactions, today.AddDate(0, -12, 0), today, positionValue)

	return metrics
}

// windowXIRR computes the return over one window, looking up the holding's
// market quote at the window start. A missing quote degrades to cost-basis
// reconstruction rather than failing the window.
func (s *Service) windowXIRR(ctx context.Context, inv models.Investment, transactions []models.Transaction, start, end time.Time, endValue decimal.Decimal) *decimal.Decimal {
	var startRate *decimal.Decimal
	if inv.HasTicker() {
		if rate, err := s.rates.HistoricalRate(ctx, inv.Ticker, start); err == nil {
			startRate = &rate
		}
	}
	return HistoricalXIRR(transactions, start, end, startRate, endValue)
}
