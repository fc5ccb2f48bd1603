package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashFlow is a dated signed amount: negative = capital committed, positive =
// capital returned or realized. Flows are built transiently for the solver
// and never persisted.
type CashFlow struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// NetSum returns the sum of all flow amounts.
func NetSum(flows []CashFlow) decimal.Decimal {
	sum := decimal.Zero
	for _, f := range flows {
		sum = sum.Add(f.Amount)
	}
	return sum
}

// HasBothSigns reports whether the series holds at least one strictly
// negative and one strictly positive flow, the precondition for a defined
// rate of return.
func HasBothSigns(flows []CashFlow) bool {
	var neg, pos bool
	for _, f := range flows {
		switch f.Amount.Sign() {
		case -1:
			neg = true
		case 1:
			pos = true
		}
	}
	return neg && pos
}
