package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/clients/alphavantage"
	"github.com/karpatel/nivesh/internal/clients/captnemo"
	"github.com/karpatel/nivesh/internal/clients/mfapi"
	"github.com/karpatel/nivesh/internal/clients/yahoo"
	"github.com/karpatel/nivesh/internal/interfaces"
)

// Source names used in routing configuration.
const (
	SourceMutualFund = "mutualfund"
	SourceISIN       = "isin"
	SourceMarket     = "market"
)

// MutualFundSource prices Indian mutual funds by scheme code. MFAPI serves
// both the latest NAV and the published NAV history, so one client covers
// current and historical lookups.
type MutualFundSource struct {
	client   *mfapi.Client
	lookback int
}

// NewMutualFundSource creates a scheme-code price source.
func NewMutualFundSource(client *mfapi.Client, lookbackDays int) *MutualFundSource {
	return &MutualFundSource{client: client, lookback: lookbackDays}
}

func (s *MutualFundSource) FetchCurrent(ctx context.Context, instrumentID string) (decimal.Decimal, error) {
	return s.client.GetLatestNAV(ctx, instrumentID)
}

func (s *MutualFundSource) FetchHistorical(ctx context.Context, instrumentID string, date time.Time) (decimal.Decimal, error) {
	return s.client.GetNAVOn(ctx, instrumentID, date, s.lookback)
}

// ISINSource prices ISIN-identified funds: Captnemo for the latest NAV,
// Yahoo for dated closes since Captnemo publishes no history.
type ISINSource struct {
	captnemo *captnemo.Client
	yahoo    *yahoo.Client
	lookback int
}

// NewISINSource creates an ISIN price source.
func NewISINSource(captnemo *captnemo.Client, yahoo *yahoo.Client, lookbackDays int) *ISINSource {
	return &ISINSource{captnemo: captnemo, yahoo: yahoo, lookback: lookbackDays}
}

func (s *ISINSource) FetchCurrent(ctx context.Context, instrumentID string) (decimal.Decimal, error) {
	return s.captnemo.GetNAV(ctx, instrumentID)
}

func (s *ISINSource) FetchHistorical(ctx context.Context, instrumentID string, date time.Time) (decimal.Decimal, error) {
	return s.yahoo.GetClose(ctx, instrumentID, date, s.lookback)
}

// MarketSource prices listed tickers: Alpha Vantage for the latest quote,
// Yahoo for dated closes since Alpha Vantage meters its history endpoints
// too aggressively for backfill use.
type MarketSource struct {
	alphavantage *alphavantage.Client
	yahoo        *yahoo.Client
	lookback     int
}

// NewMarketSource creates a listed-ticker price source.
func NewMarketSource(alphavantage *alphavantage.Client, yahoo *yahoo.Client, lookbackDays int) *MarketSource {
	return &MarketSource{alphavantage: alphavantage, yahoo: yahoo, lookback: lookbackDays}
}

func (s *MarketSource) FetchCurrent(ctx context.Context, instrumentID string) (decimal.Decimal, error) {
	return s.alphavantage.GetIntradayQuote(ctx, instrumentID)
}

func (s *MarketSource) FetchHistorical(ctx context.Context, instrumentID string, date time.Time) (decimal.Decimal, error) {
	return s.yahoo.GetClose(ctx, instrumentID, date, s.lookback)
}

var (
	_ interfaces.PriceSource = (*MutualFundSource)(nil)
	_ interfaces.PriceSource = (*ISINSource)(nil)
	_ interfaces.PriceSource = (*MarketSource)(nil)
)
