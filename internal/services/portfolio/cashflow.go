package portfolio

import (
	"github.com/karpatel/nivesh/internal/models"
)

// FlowsFromTransactions converts a holding's transaction history into signed
// cash flows: buys negative, sells and gains positive. A facet without a
// quantity is a lump-sum entry whose rate is the full cash amount. Partially
// filled facets are skipped rather than guessed at. Output order is
// unspecified; the solver sorts.
func FlowsFromTransactions(transactions []models.Transaction) []models.CashFlow {
	var flows []models.CashFlow
	for _, tx := range transactions {
		if tx.Buy.Complete() {
			flows = append(flows, models.CashFlow{Date: tx.Buy.Date, Amount: tx.Buy.Amount()})
		}
		if tx.Sell.Complete() {
			flows = append(flows, models.CashFlow{Date: tx.Sell.Date, Amount: tx.Sell.Amount()})
		}
		if tx.Gain.Complete() {
			flows = append(flows, models.CashFlow{Date: tx.Gain.Date, Amount: tx.Gain.Amount})
		}
	}
	return flows
}
