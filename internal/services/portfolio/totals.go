package portfolio

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

// currencyBucket accumulates one currency's holdings during aggregation.
type currencyBucket struct {
	current  decimal.Decimal
	purchase decimal.Decimal
	gain     decimal.Decimal
	flows    []models.CashFlow // ticker-bearing holdings only
	terminal decimal.Decimal   // sum of current values of those holdings
}

// ComputePortfolioTotals rolls every holding up into per-currency totals
// with a blended XIRR, then converts to a grand total in the reference
// currency at live FX. The cross-currency figures are best-effort display
// values: one live rate per currency, not per-transaction conversion.
func (s *Service) ComputePortfolioTotals(ctx context.Context, investments []models.Investment, transactionsByHolding map[string][]models.Transaction) models.PortfolioTotals {
	today := s.today()
	totals := models.PortfolioTotals{
		ReferenceCurrency: s.refCurrency,
		AsOf:              today,
	}

	buckets := map[models.Currency]*currencyBucket{}
	for _, inv := range investments {
		transactions := transactionsByHolding[inv.Name]
		m := s.ComputeHoldingMetrics(ctx, inv, transactions)
		totals.Holdings = append(totals.Holdings, m)

		b := buckets[inv.Currency]
		if b == nil {
			b = &currencyBucket{
				current:  decimal.Zero,
				purchase: decimal.Zero,
				gain:     decimal.Zero,
				terminal: decimal.Zero,
			}
			buckets[inv.Currency] = b
		}
		b.current = b.current.Add(m.CurrentValue)
		b.purchase = b.purchase.Add(m.PurchaseValue)
		b.gain = b.gain.Add(m.Gain)
		if inv.HasTicker() {
			b.flows = append(b.flows, FlowsFromTransactions(transactions)...)
			b.terminal = b.terminal.Add(m.CurrentValue)
		}
	}

	grandTotal := decimal.Zero
	grandPurchase := decimal.Zero
	var overallFlows []models.CashFlow
	overallTerminal := decimal.Zero

	// SupportedCurrencies fixes the iteration order so identical inputs
	// yield identical output.
	for _, currency := range models.SupportedCurrencies {
		b := buckets[currency]
		if b == nil {
			continue
		}

		ct := models.CurrencyTotals{
			Currency:      currency,
			CurrentValue:  b.current,
			PurchaseValue: b.purchase,
			Gain:          b.gain,
			BlendedXIRR:   blendedXIRR(b, today),
		}
		totals.Currencies = append(totals.Currencies, ct)

		fx, err := s.rates.FXRate(ctx, currency, s.refCurrency)
		if err != nil {
			s.logger.Warn().Str("currency", string(currency)).Str("reference", string(s.refCurrency)).Msg("No FX rate, excluding currency from grand total")
			continue
		}
		grandTotal = grandTotal.Add(b.current.Mul(fx))
		grandPurchase = grandPurchase.Add(b.purchase.Mul(fx))
		for _, f := range b.flows {
			overallFlows = append(overallFlows, models.CashFlow{Date: f.Date, Amount: f.Amount.Mul(fx)})
		}
		overallTerminal = overallTerminal.Add(b.terminal.Mul(fx))
	}

	totals.GrandTotal = grandTotal
	totals.GrandPurchase = grandPurchase
	totals.GrandGain = grandTotal.Sub(grandPurchase)

	if overallTerminal.Sign() > 0 {
		overallFlows = append(overallFlows, models.CashFlow{Date: today, Amount: overallTerminal})
	}
	totals.OverallXIRR = XIRR(overallFlows)

	return totals
}

// blendedXIRR treats all of a currency's ticker-bearing holdings as one
// synthetic series: their combined flows plus their combined current value
// as the terminal inflow.
func blendedXIRR(b *currencyBucket, today time.Time) *decimal.Decimal {
	if len(b.flows) == 0 {
		return nil
	}
	series := make([]models.CashFlow, 0, len(b.flows)+1)
	series = append(series, b.flows...)
	if b.terminal.Sign() > 0 {
		series = append(series, models.CashFlow{Date: today, Amount: b.terminal})
	}
	return XIRR(series)
}
