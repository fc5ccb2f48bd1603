package portfolio

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestXIRR_SimpleBuyAndHold(t *testing.T) {
	// Buy 10,000 worth, now worth 11,000 after exactly 365 days
	// Expected XIRR: 10% to solver precision
	now := dt(2024, 1, 1)

	txs := []models.Transaction{
		buyOn("Vanguard Total", dt(2023, 1, 1), "100", "100"),
	}
	xirr := InvestmentXIRR(txs, decimal.NewFromInt(11000), now)

	if xirr == nil {
		t.Fatal("XIRR = nil, want ~10% for simple buy-and-hold")
	}
	if !approxEqual(xirr.InexactFloat64(), 10.0, 0.01) {
		t.Errorf("XIRR = %.4f%%, want 10%% for simple buy-and-hold", xirr.InexactFloat64())
	}
}

func TestXIRR_ShortPeriodAnnualises(t *testing.T) {
	// Buy 10,000, worth 10,500 after ~6 months
	// Simple return = 5%, annualised XIRR should be ~10.3%
	now := dt(2023, 7, 1)

	txs := []models.Transaction{
		buyOn("Vanguard Total", dt(2023, 1, 1), "100", "100"),
	}
	xirr := InvestmentXIRR(txs, decimal.NewFromInt(10500), now)

	if xirr == nil {
		t.Fatal("XIRR = nil, want ~10.3% for 6-month 5% gain")
	}
	got := xirr.InexactFloat64()
	if got < 9 || got > 12 {
		t.Errorf("XIRR = %.2f%%, want ~10.3%% for 6-month 5%% gain", got)
	}
}

func TestXIRR_BuyAndSellAtProfit(t *testing.T) {
	// Buy 10,000, sell for 12,000 after 1 year
	// Expected XIRR: ~20%
	now := dt(2024, 1, 1)

	txs := []models.Transaction{
		buyOn("Vanguard Total", dt(2023, 1, 1), "100", "100"),
		sellOn("Vanguard Total", dt(2024, 1, 1), "100", "120"),
	}
	// Closed position, no terminal value
	xirr := InvestmentXIRR(txs, decimal.Zero, now)

	if xirr == nil {
		t.Fatal("XIRR = nil, want ~20% for buy 100 sell 120")
	}
	if !approxEqual(xirr.InexactFloat64(), 20.0, 0.5) {
		t.Errorf("XIRR = %.2f%%, want ~20%% for buy 100 sell 120", xirr.InexactFloat64())
	}
}

func TestXIRR_BuyAndSellAtLoss(t *testing.T) {
	// Buy 10,000, sell for 8,000 after 1 year
	// Expected XIRR: ~-20%
	now := dt(2024, 1, 1)

	txs := []models.Transaction{
		buyOn("Vanguard Total", dt(2023, 1, 1), "100", "100"),
		sellOn("Vanguard Total", dt(2024, 1, 1), "100", "80"),
	}
	xirr := InvestmentXIRR(txs, decimal.Zero, now)

	if xirr == nil {
		t.Fatal("XIRR = nil, want ~-20% for 20% loss")
	}
	if !approxEqual(xirr.InexactFloat64(), -20.0, 0.5) {
		t.Errorf("XIRR = %.2f%%, want ~-20%% for 20%% loss", xirr.InexactFloat64())
	}
}

func TestXIRR_MultipleBuys(t *testing.T) {
	// Buy 100 @ 100 on Jan 1, buy 100 @ 110 on Jul 1, worth 120/unit after 1 year
	// XIRR accounts for timing of cash flows
	now := dt(2024, 1, 1)

	txs := []models.Transaction{
		buyOn("Vanguard Total", dt(2023, 1, 1), "100", "100"),
		buyOn("Vanguard Total", dt(2023, 7, 1), "100", "110"),
	}
	currentValue := decimal.NewFromInt(200 * 120)
	xirr := InvestmentXIRR(txs, currentValue, now)

	if xirr == nil {
		t.Fatal("XIRR = nil, want a finite rate for multiple buys")
	}
	// First buy gained ~20% over a year, second ~9% over six months
	got := xirr.InexactFloat64()
	if got < 10 || got > 30 {
		t.Errorf("XIRR = %.2f%%, want 15-25%% range for multiple buys", got)
	}
}

func TestXIRR_GainFlowsCount(t *testing.T) {
	// Buy 10,000, still worth 10,000 after 1 year, plus a 500 dividend
	// Expected XIRR: ~5%
	now := dt(2024, 1, 1)

	txs := []models.Transaction{
		buyOn("Vanguard Total", dt(2023, 1, 1), "100", "100"),
		gainOn("Vanguard Total", dt(2024, 1, 1), "500"),
	}
	xirr := InvestmentXIRR(txs, decimal.NewFromInt(10000), now)

	if xirr == nil {
		t.Fatal("XIRR = nil, want ~5% with dividend income")
	}
	if !approxEqual(xirr.InexactFloat64(), 5.0, 0.5) {
		t.Errorf("XIRR = %.2f%%, want ~5%% with dividend income", xirr.InexactFloat64())
	}
}

func TestXIRR_PartialSellsAndReentry(t *testing.T) {
	// Buy, partial sells, re-entry buys, still holding
	now := dt(2025, 2, 22)

	txs := []models.Transaction{
		buyOn("SKS", dt(2024, 1, 15), "4925", "4.0248"),
		sellOn("SKS", dt(2024, 4, 10), "1333", "3.7627"),
		sellOn("SKS", dt(2024, 5, 20), "819", "3.680"),
		sellOn("SKS", dt(2024, 7, 15), "2773", "3.4508"),
		buyOn("SKS", dt(2024, 9, 10), "2511", "3.980"),
		buyOn("SKS", dt(2024, 10, 5), "2456", "4.070"),
	}

	// 4925 - 1333 - 819 - 2773 + 2511 + 2456 = 4967 units @ 4.71
	marketValue := decimal.NewFromInt(4967).Mul(decimal.RequireFromString("4.71"))
	xirr := InvestmentXIRR(txs, marketValue, now)

	if xirr == nil {
		t.Fatal("XIRR = nil, expected a finite value")
	}
	got := xirr.InexactFloat64()
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("XIRR = %v, expected a finite value", got)
	}
	if got < -50 || got > 100 {
		t.Errorf("XIRR = %.2f%%, outside reasonable range [-50%%, 100%%]", got)
	}
}

func TestXIRR_TooFewFlows(t *testing.T) {
	single := []models.CashFlow{
		{Date: dt(2023, 1, 1), Amount: decimal.NewFromInt(-10000)},
	}
	if got := XIRR(single); got != nil {
		t.Errorf("XIRR with one flow = %s, want nil", got)
	}
	if got := XIRR(nil); got != nil {
		t.Errorf("XIRR with no flows = %s, want nil", got)
	}
}

func TestXIRR_AllOneSign(t *testing.T) {
	buys := []models.CashFlow{
		{Date: dt(2023, 1, 1), Amount: decimal.NewFromInt(-10000)},
		{Date: dt(2023, 7, 1), Amount: decimal.NewFromInt(-5000)},
	}
	if got := XIRR(buys); got != nil {
		t.Errorf("XIRR with only outflows = %s, want nil", got)
	}

	gains := []models.CashFlow{
		{Date: dt(2023, 1, 1), Amount: decimal.NewFromInt(100)},
		{Date: dt(2023, 7, 1), Amount: decimal.NewFromInt(200)},
	}
	if got := XIRR(gains); got != nil {
		t.Errorf("XIRR with only inflows = %s, want nil", got)
	}
}

func TestXIRR_AllFlowsSameDay(t *testing.T) {
	// Buy and sell on the same date: no elapsed time, no annualised rate
	flows := []models.CashFlow{
		{Date: dt(2023, 1, 1), Amount: decimal.NewFromInt(-10000)},
		{Date: dt(2023, 1, 1), Amount: decimal.NewFromInt(11000)},
	}
	if got := XIRR(flows); got != nil {
		t.Errorf("XIRR with same-day flows = %s, want nil", got)
	}
}

func TestInvestmentXIRR_NoFlowsNoValue(t *testing.T) {
	if got := InvestmentXIRR(nil, decimal.Zero, dt(2024, 1, 1)); got != nil {
		t.Errorf("XIRR with no history and no value = %s, want nil", got)
	}
	// A bare terminal value with no history is still a single flow
	if got := InvestmentXIRR(nil, decimal.NewFromInt(5000), dt(2024, 1, 1)); got != nil {
		t.Errorf("XIRR with terminal value only = %s, want nil", got)
	}
}

func TestInvestmentXIRR_TotalLoss(t *testing.T) {
	// All money invested, current value zero: no positive flow to solve against
	txs := []models.Transaction{
		buyOn("Vanguard Total", dt(2023, 1, 1), "100", "100"),
	}
	if got := InvestmentXIRR(txs, decimal.Zero, dt(2024, 1, 1)); got != nil {
		t.Errorf("XIRR with total loss and no proceeds = %s, want nil", got)
	}
}
