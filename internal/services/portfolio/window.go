package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

// windowZeroEpsilon is the net-flow tolerance under which a window is a
// degenerate wash: the return is defined as exactly 0% without invoking the
// solver.
var windowZeroEpsilon = decimal.RequireFromString("0.01")

// position is a holding's reconstructed state at a point in time: units
// held, the proportional cost of those units, and accumulated gain income.
type position struct {
	qty   decimal.Decimal
	cost  decimal.Decimal
	gains decimal.Decimal
}

// costValue is the cost-basis valuation: what the remaining units cost plus
// income already realized. Used whenever no market quote is available.
func (p position) costValue() decimal.Decimal {
	return p.cost.Add(p.gains)
}

// positionBefore folds every facet dated strictly before cutoff into a
// position. Buys add quantity and cost; sells remove quantity and reverse a
// proportional share of cost at average price; gains accumulate separately.
// Lump-sum facets without a quantity move cost alone.
func positionBefore(transactions []models.Transaction, cutoff time.Time) position {
	p := position{qty: decimal.Zero, cost: decimal.Zero, gains: decimal.Zero}
	for _, tx := range transactions {
		if tx.Buy.Complete() && tx.Buy.Date.Before(cutoff) {
			if tx.Buy.Quantity != nil {
				p.qty = p.qty.Add(*tx.Buy.Quantity)
				p.cost = p.cost.Add(tx.Buy.Quantity.Mul(tx.Buy.Rate))
			} else {
				p.cost = p.cost.Add(tx.Buy.Rate)
			}
		}
		if tx.Sell.Complete() && tx.Sell.Date.Before(cutoff) {
			if tx.Sell.Quantity != nil {
				sold := *tx.Sell.Quantity
				if p.qty.Sign() > 0 {
					if sold.GreaterThanOrEqual(p.qty) {
						p.cost = decimal.Zero
					} else {
						p.cost = p.cost.Sub(p.cost.Mul(sold).Div(p.qty))
					}
				}
				p.qty = p.qty.Sub(sold)
			} else {
				p.cost = p.cost.Sub(tx.Sell.Rate)
			}
		}
		if tx.Gain.Complete() && tx.Gain.Date.Before(cutoff) {
			p.gains = p.gains.Add(tx.Gain.Amount)
		}
	}
	return p
}

// positionThrough folds facets dated on or before date. Dates are held at
// day resolution, so the cutoff is the following day.
func positionThrough(transactions []models.Transaction, date time.Time) position {
	return positionBefore(transactions, date.AddDate(0, 0, 1))
}

// WindowComponents reconstructs a holding's state at the start of an
// arbitrary window. Facets strictly before start fold into the starting
// position; facets within [start, end] become ordinary signed flows; facets
// after end are ignored. The starting value is quantity × startRate when a
// market quote for the start date is supplied, cost-basis value otherwise.
func WindowComponents(transactions []models.Transaction, start, end time.Time, startRate *decimal.Decimal) (decimal.Decimal, []models.CashFlow) {
	pre := positionBefore(transactions, start)

	inWindow := func(d time.Time) bool {
		return !d.Before(start) && !d.After(end)
	}
	var flows []models.CashFlow
	for _, tx := range transactions {
		if tx.Buy.Complete() && inWindow(tx.Buy.Date) {
			flows = append(flows, models.CashFlow{Date: tx.Buy.Date, Amount: tx.Buy.Amount()})
		}
		if tx.Sell.Complete() && inWindow(tx.Sell.Date) {
			flows = append(flows, models.CashFlow{Date: tx.Sell.Date, Amount: tx.Sell.Amount()})
		}
		if tx.Gain.Complete() && inWindow(tx.Gain.Date) {
			flows = append(flows, models.CashFlow{Date: tx.Gain.Date, Amount: tx.Gain.Amount})
		}
	}

	var startingValue decimal.Decimal
	if startRate != nil {
		startingValue = pre.qty.Mul(*startRate)
	} else {
		startingValue = pre.costValue()
	}
	return startingValue, flows
}

// HistoricalXIRR computes the return over [start, end]: the starting value
// leaves as an outflow at start, in-window flows keep their signs, and the
// end market value arrives as an inflow at end. Boundary terms are included
// only when positive. A window with no position and no flows has no defined
// return; a window whose series nets to zero within epsilon is exactly 0%.
func HistoricalXIRR(transactions []models.Transaction, start, end time.Time, startRate *decimal.Decimal, endValue decimal.Decimal) *decimal.Decimal {
	startingValue, flows := WindowComponents(transactions, start, end, startRate)

	var series []models.CashFlow
	if startingValue.Sign() > 0 {
		series = append(series, models.CashFlow{Date: start, Amount: startingValue.Neg()})
	}
	series = append(series, flows...)
	if endValue.Sign() > 0 {
		series = append(series, models.CashFlow{Date: end, Amount: endValue})
	}

	if len(series) == 0 {
		return nil
	}
	if models.NetSum(series).Abs().LessThanOrEqual(windowZeroEpsilon) {
		zero := decimal.Zero
		return &zero
	}
	return XIRR(series)
}
