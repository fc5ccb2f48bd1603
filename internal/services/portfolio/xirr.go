package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

// floatFlow is a cash flow lowered to floating point for root-finding. The
// decimal→float conversion happens only here, at the solver boundary; the
// rest of the pipeline stays exact.
type floatFlow struct {
	date   time.Time
	amount float64
}

// XIRR computes the annualised internal rate of return for an
// irregularly-dated cash-flow series, as a percentage. Returns nil when the
// rate is undefined: fewer than two flows, all flows one sign, or a solve
// that does not converge. Nil is distinct from a genuine 0% return.
func XIRR(flows []models.CashFlow) *decimal.Decimal {
	if len(flows) < 2 || !models.HasBothSigns(flows) {
		return nil
	}

	lowered := make([]floatFlow, len(flows))
	for i, f := range flows {
		lowered[i] = floatFlow{date: f.Date, amount: f.Amount.InexactFloat64()}
	}
	sort.Slice(lowered, func(i, j int) bool {
		return lowered[i].date.Before(lowered[j].date)
	})
	if lowered[0].date.Equal(lowered[len(lowered)-1].date) {
		// Zero elapsed time: no annualised rate exists
		return nil
	}

	rate := solveRate(lowered)
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil
	}

	pct := decimal.NewFromFloat(rate * 100)
	return &pct
}

// InvestmentXIRR computes a holding's lifetime return: its transaction flows
// plus the current position value as a terminal inflow at now. The terminal
// flow is position value only; gain facets already appear as their own
// dated flows.
func InvestmentXIRR(transactions []models.Transaction, currentValue decimal.Decimal, now time.Time) *decimal.Decimal {
	flows := FlowsFromTransactions(transactions)
	if len(flows) == 0 && currentValue.Sign() <= 0 {
		return nil
	}
	if currentValue.Sign() > 0 {
		flows = append(flows, models.CashFlow{Date: now, Amount: currentValue})
	}
	return XIRR(flows)
}

// solveRate uses Newton-Raphson to find the rate r such that NPV(r) = 0.
// NPV(r) = sum of amount_i / (1 + r)^(years_i) where years_i = days from the
// first date / 365. Returns the rate as a decimal fraction (0.12 for 12%).
func solveRate(flows []floatFlow) float64 {
	const (
		maxIter = 100
		tol     = 1e-7
		minRate = -0.999 // rate can't go below -99.9%
	)

	baseDate := flows[0].date

	// Convert dates to year fractions
	years := make([]float64, len(flows))
	for i, f := range flows {
		days := f.date.Sub(baseDate).Hours() / 24
		years[i] = days / 365
	}

	// Initial guess: use simple return as starting point
	totalInvested := 0.0
	totalReceived := 0.0
	for _, f := range flows {
		if f.amount < 0 {
			totalInvested -= f.amount
		} else {
			totalReceived += f.amount
		}
	}

	guess := 0.1 // default 10%
	if totalInvested > 0 {
		simpleReturn := totalReceived/totalInvested - 1
		// Clamp initial guess to reasonable range
		if simpleReturn > -0.9 && simpleReturn < 10 {
			guess = simpleReturn
		}
	}

	rate := guess

	for iter := 0; iter < maxIter; iter++ {
		npv := 0.0
		dnpv := 0.0 // derivative of NPV with respect to rate

		for i, f := range flows {
			y := years[i]
			base := 1 + rate
			if base <= 0 {
				// Avoid negative base with fractional exponent
				rate = minRate
				base = 1 + rate
			}
			discount := math.Pow(base, y)
			if discount == 0 {
				continue
			}
			npv += f.amount / discount
			if y != 0 {
				dnpv -= y * f.amount / (discount * base)
			}
		}

		if math.Abs(npv) < tol {
			return rate
		}

		if dnpv == 0 {
			// Derivative is zero, can't continue Newton-Raphson
			break
		}

		newRate := rate - npv/dnpv

		// Clamp to prevent wild oscillation
		if newRate < minRate {
			newRate = minRate
		}
		if newRate > 100 { // 10000% annual return cap
			newRate = 100
		}

		rate = newRate
	}

	// Fallback: bisection if Newton-Raphson didn't converge
	return bisectRate(flows, years)
}

// bisectRate is the fallback solver, bracketing the root in [-99%, 1000%].
func bisectRate(flows []floatFlow, years []float64) float64 {
	const (
		maxIter = 200
		tol     = 1e-6
	)

	npvAt := func(rate float64) float64 {
		sum := 0.0
		for i, f := range flows {
			base := 1 + rate
			if base <= 0 {
				return math.NaN()
			}
			sum += f.amount / math.Pow(base, years[i])
		}
		return sum
	}

	lo, hi := -0.99, 10.0
	npvLo := npvAt(lo)
	npvHi := npvAt(hi)

	if math.IsNaN(npvLo) || math.IsNaN(npvHi) {
		return math.NaN()
	}
	if npvLo*npvHi > 0 {
		// Same sign, no root in this bracket
		return math.NaN()
	}

	for iter := 0; iter < maxIter; iter++ {
		mid := (lo + hi) / 2
		npvMid := npvAt(mid)
		if math.IsNaN(npvMid) {
			return math.NaN()
		}
		if math.Abs(npvMid) < tol {
			return mid
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}

	return (lo + hi) / 2
}
