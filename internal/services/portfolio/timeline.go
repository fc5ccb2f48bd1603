package portfolio

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

// newInvestmentThresholds: buys near a snapshot date above these amounts
// mark the snapshot as a new-investment event.
var newInvestmentThresholds = map[models.Currency]decimal.Decimal{
	models.CurrencyUSD: decimal.NewFromInt(5000),
	models.CurrencyINR: decimal.NewFromInt(50000),
}

// newInvestmentWindow is how far a buy may sit from a snapshot date and
// still count as landing "around" it.
const newInvestmentWindow = 7 * 24 * time.Hour

// GenerateTimeline produces dated portfolio value snapshots in the reference
// currency: one per transaction date plus one per month start, bounded by
// [from, to]. A zero from clamps to the first transaction (never earlier
// than the configured floor); a zero to means today. Dates where the
// portfolio had no value are dropped.
func (s *Service) GenerateTimeline(ctx context.Context, investments []models.Investment, transactionsByHolding map[string][]models.Transaction, from, to time.Time) []models.TimelinePoint {
	var txDates []time.Time
	for _, transactions := range transactionsByHolding {
		for _, tx := range transactions {
			if tx.Buy.Complete() {
				txDates = append(txDates, day(tx.Buy.Date))
			}
			if tx.Sell.Complete() {
				txDates = append(txDates, day(tx.Sell.Date))
			}
			if tx.Gain.Complete() {
				txDates = append(txDates, day(tx.Gain.Date))
			}
		}
	}
	if len(txDates) == 0 {
		return nil
	}

	if from.IsZero() {
		earliest := txDates[0]
		for _, d := range txDates[1:] {
			if d.Before(earliest) {
				earliest = d
			}
		}
		from = earliest
		if from.Before(s.floor) {
			from = s.floor
		}
	} else {
		from = day(from)
	}
	if to.IsZero() {
		to = s.today()
	} else {
		to = day(to)
	}

	seen := map[time.Time]bool{}
	for _, d := range txDates {
		seen[d] = true
	}
	for month := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC); !month.After(to); month = month.AddDate(0, 1, 0) {
		seen[month] = true
	}

	var dates []time.Time
	for d := range seen {
		if !d.Before(from) && !d.After(to) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	points := make([]models.TimelinePoint, 0, len(dates))
	for _, date := range dates {
		value, cost := s.valueOn(ctx, investments, transactionsByHolding, date, date.Equal(to))
		if value.Sign() == 0 {
			continue
		}

		significant, event := detectNewInvestments(investments, transactionsByHolding, date)
		points = append(points, models.TimelinePoint{
			Date:          date,
			Value:         value,
			CostBasis:     cost,
			NewInvestment: significant,
			Event:         event,
		})
	}

	s.logger.Debug().Int("points", len(points)).Str("from", models.RateDate(from)).Str("to", models.RateDate(to)).Msg("Timeline generated")
	return points
}

// valueOn values the whole portfolio as of one date in the reference
// currency. Past dates use historical rates; today uses current rates. A
// holding without a usable quote falls back to cost basis, and a currency
// without a usable FX rate is skipped.
func (s *Service) valueOn(ctx context.Context, investments []models.Investment, transactionsByHolding map[string][]models.Transaction, date time.Time, isToday bool) (decimal.Decimal, decimal.Decimal) {
	totalValue := decimal.Zero
	totalCost := decimal.Zero

	for _, inv := range investments {
		pos := positionThrough(transactionsByHolding[inv.Name], date)
		if pos.qty.Sign() <= 0 && pos.cost.Sign() <= 0 && pos.gains.Sign() <= 0 {
			continue
		}

		value := pos.cost
		if inv.HasTicker() && pos.qty.Sign() > 0 {
			var (
				rate decimal.Decimal
				err  error
			)
			if isToday {
				rate, err = s.rates.CurrentRate(ctx, inv.Ticker, false)
			} else {
				rate, err = s.rates.HistoricalRate(ctx, inv.Ticker, date)
			}
			if err == nil {
				value = pos.qty.Mul(rate)
			}
		}
		value = value.Add(pos.gains)

		fx, ok := s.fxOn(ctx, inv.Currency, date, isToday)
		if !ok {
			s.logger.Warn().Str("holding", inv.Name).Str("currency", string(inv.Currency)).Msg("No FX rate, holding excluded from timeline point")
			continue
		}
		totalValue = totalValue.Add(value.Mul(fx))
		totalCost = totalCost.Add(pos.cost.Mul(fx))
	}

	return totalValue, totalCost
}

// fxOn resolves the conversion into the reference currency for a snapshot
// date, degrading from the dated rate to the current one.
func (s *Service) fxOn(ctx context.Context, currency models.Currency, date time.Time, isToday bool) (decimal.Decimal, bool) {
	if currency == s.refCurrency {
		return decimal.NewFromInt(1), true
	}
	if !isToday {
		if fx, err := s.rates.FXRateOn(ctx, currency, s.refCurrency, date); err == nil {
			return fx, true
		}
	}
	fx, err := s.rates.FXRate(ctx, currency, s.refCurrency)
	if err != nil {
		return decimal.Zero, false
	}
	return fx, true
}

// detectNewInvestments reports whether significant fresh capital landed
// within a week of the date, with a short description of the buys involved.
// Reinvested dividends and share reinvestments do not count as new capital.
func detectNewInvestments(investments []models.Investment, transactionsByHolding map[string][]models.Transaction, date time.Time) (bool, string) {
	totals := map[models.Currency]decimal.Decimal{}
	var events []string

	for _, inv := range investments {
		for _, tx := range transactionsByHolding[inv.Name] {
			if !tx.Buy.Complete() || tx.Buy.Quantity == nil {
				continue
			}
			if strings.Contains(tx.Description, "Reinvest Shares") || strings.Contains(tx.Description, "Reinvest Dividend") {
				continue
			}
			gap := tx.Buy.Date.Sub(date)
			if gap < 0 {
				gap = -gap
			}
			if gap > newInvestmentWindow {
				continue
			}

			totals[inv.Currency] = totals[inv.Currency].Add(tx.Buy.Quantity.Mul(tx.Buy.Rate))
			label := tx.Description
			if label == "" {
				label = "Buy"
			}
			events = append(events, inv.Name+": "+label)
		}
	}

	significant := false
	for currency, threshold := range newInvestmentThresholds {
		if totals[currency].GreaterThan(threshold) {
			significant = true
			break
		}
	}
	if !significant {
		return false, ""
	}

	if len(events) > 3 {
		events = events[:3]
	}
	return true, strings.Join(events, "; ")
}

// day truncates to day resolution in UTC.
func day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
