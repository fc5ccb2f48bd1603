// Package rates implements the cached rate provider: every price and FX
// question is answered from an in-memory cache backed by a persistent store,
// with upstream fetches only when the cache cannot serve.
package rates

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/common"
	"github.com/karpatel/nivesh/internal/interfaces"
	"github.com/karpatel/nivesh/internal/models"
)

// ErrUnavailable is the normalized not-available error. Every upstream
// failure surfaces as this single sentinel so callers fall back to cost
// basis instead of inspecting transport errors.
var ErrUnavailable = errors.New("rate not available")

type route struct {
	pattern *regexp.Regexp
	source  string
}

// Service implements RateProvider over a write-through rate cache.
type Service struct {
	mu        sync.RWMutex
	cache     map[string]models.RateEntry
	store     interfaces.RateCacheStore
	sources   map[string]interfaces.PriceSource
	fx        interfaces.FXSource
	routes    []route
	freshness time.Duration
	logger    *common.Logger
	now       func() time.Time // injectable clock for testing
}

// NewService builds the rate provider: compiles the routing table and loads
// the persisted cache once. An unreadable cache is a cold start, not a
// failure.
func NewService(store interfaces.RateCacheStore, sources map[string]interfaces.PriceSource, fx interfaces.FXSource, cfg *common.RatesConfig, logger *common.Logger) (*Service, error) {
	routes := make([]route, 0, len(cfg.Routing))
	for _, rule := range cfg.Routing {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid routing pattern %q: %w", rule.Pattern, err)
		}
		if _, ok := sources[rule.Source]; !ok {
			return nil, fmt.Errorf("routing rule %q names unknown source %q", rule.Pattern, rule.Source)
		}
		routes = append(routes, route{pattern: re, source: rule.Source})
	}

	cache, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("Rate cache load failed, starting cold")
		cache = map[string]models.RateEntry{}
	}
	logger.Info().Int("entries", len(cache)).Msg("Rate cache loaded")

	return &Service{
		cache:     cache,
		store:     store,
		sources:   sources,
		fx:        fx,
		routes:    routes,
		freshness: cfg.Freshness(),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// CurrentRate returns the instrument's latest unit price. A fresh cache
// entry short-circuits the fetch unless forceRefresh is set; a failed fetch
// falls back to whatever the cache holds, however old.
func (s *Service) CurrentRate(ctx context.Context, instrumentID string, forceRefresh bool) (decimal.Decimal, error) {
	key := models.CurrentRateKey(instrumentID)

	if !forceRefresh {
		if entry, ok := s.lookup(key); ok && common.IsFresh(entry.FetchedAt, s.freshness) {
			return entry.Rate, nil
		}
	}

	source, name, err := s.routeFor(instrumentID)
	if err == nil {
		var rate decimal.Decimal
		rate, err = source.FetchCurrent(ctx, instrumentID)
		if err == nil {
			s.commit(key, rate)
			s.logger.Debug().Str("instrument", instrumentID).Str("source", name).Str("rate", rate.String()).Msg("Current rate fetched")
			return rate, nil
		}
	}

	// Stale fallback: any cached value beats none.
	if entry, ok := s.lookup(key); ok {
		s.logger.Warn().Err(err).Str("instrument", instrumentID).Msg("Fetch failed, serving cached rate")
		return entry.Rate, nil
	}
	s.logger.Warn().Err(err).Str("instrument", instrumentID).Msg("Rate unavailable")
	return decimal.Zero, ErrUnavailable
}

// HistoricalRate returns the closing price for a past date. Dated entries
// are immutable: once cached they are returned unconditionally, and fetch
// failures are never cached.
func (s *Service) HistoricalRate(ctx context.Context, instrumentID string, date time.Time) (decimal.Decimal, error) {
	key := models.HistoricalRateKey(instrumentID, date)
	if entry, ok := s.lookup(key); ok {
		return entry.Rate, nil
	}

	source, name, err := s.routeFor(instrumentID)
	if err != nil {
		s.logger.Warn().Err(err).Str("instrument", instrumentID).Msg("Historical rate unavailable")
		return decimal.Zero, ErrUnavailable
	}
	rate, err := source.FetchHistorical(ctx, instrumentID, date)
	if err != nil {
		s.logger.Warn().Err(err).Str("instrument", instrumentID).Str("date", models.RateDate(date)).Msg("Historical rate unavailable")
		return decimal.Zero, ErrUnavailable
	}

	s.commit(key, rate)
	s.logger.Debug().Str("instrument", instrumentID).Str("source", name).Str("date", models.RateDate(date)).Msg("Historical rate fetched")
	return rate, nil
}

// FXRate returns the current base→quote conversion rate, cached under the
// same freshness rules as instrument prices.
func (s *Service) FXRate(ctx context.Context, base, quote models.Currency) (decimal.Decimal, error) {
	if base == quote {
		return decimal.NewFromInt(1), nil
	}

	key := models.FXRateKey(base, quote)
	if entry, ok := s.lookup(key); ok && common.IsFresh(entry.FetchedAt, s.freshness) {
		return entry.Rate, nil
	}

	rate, err := s.fetchFX(ctx, base, quote, time.Time{})
	if err == nil {
		s.commit(key, rate)
		return rate, nil
	}

	if entry, ok := s.lookup(key); ok {
		s.logger.Warn().Err(err).Str("pair", string(base)+"/"+string(quote)).Msg("FX fetch failed, serving cached rate")
		return entry.Rate, nil
	}
	s.logger.Warn().Err(err).Str("pair", string(base)+"/"+string(quote)).Msg("FX rate unavailable")
	return decimal.Zero, ErrUnavailable
}

// FXRateOn returns the base→quote conversion rate on a past date, immutable
// once cached.
func (s *Service) FXRateOn(ctx context.Context, base, quote models.Currency, date time.Time) (decimal.Decimal, error) {
	if base == quote {
		return decimal.NewFromInt(1), nil
	}

	key := models.FXRateKeyOn(base, quote, date)
	if entry, ok := s.lookup(key); ok {
		return entry.Rate, nil
	}

	rate, err := s.fetchFX(ctx, base, quote, date)
	if err != nil {
		s.logger.Warn().Err(err).Str("pair", string(base)+"/"+string(quote)).Str("date", models.RateDate(date)).Msg("FX rate unavailable")
		return decimal.Zero, ErrUnavailable
	}

	s.commit(key, rate)
	return rate, nil
}

// fetchFX pulls the base table from the FX source and extracts one pair. A
// zero date means the current table.
func (s *Service) fetchFX(ctx context.Context, base, quote models.Currency, date time.Time) (decimal.Decimal, error) {
	var (
		table map[models.Currency]decimal.Decimal
		err   error
	)
	if date.IsZero() {
		table, err = s.fx.FetchRates(ctx, base)
	} else {
		table, err = s.fx.FetchRatesOn(ctx, base, date)
	}
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := table[quote]
	if !ok {
		return decimal.Zero, fmt.Errorf("no %s rate in %s table", quote, base)
	}
	return rate, nil
}

// routeFor matches the instrument id against the routing table, first match
// wins.
func (s *Service) routeFor(instrumentID string) (interfaces.PriceSource, string, error) {
	id := strings.ToUpper(strings.TrimSpace(instrumentID))
	for _, r := range s.routes {
		if r.pattern.MatchString(id) {
			return s.sources[r.source], r.source, nil
		}
	}
	return nil, "", fmt.Errorf("no price source routes instrument '%s'", instrumentID)
}

func (s *Service) lookup(key string) (models.RateEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	return entry, ok
}

// commit stores the entry and writes the full cache through to disk. A
// failed write is logged, not surfaced: the in-memory cache stays
// authoritative and the next successful fetch retries the flush.
func (s *Service) commit(key string, rate decimal.Decimal) {
	s.mu.Lock()
	s.cache[key] = models.RateEntry{Rate: rate, FetchedAt: s.now().UTC()}
	snapshot := make(map[string]models.RateEntry, len(s.cache))
	for k, v := range s.cache {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if err := s.store.Save(snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("Rate cache write-through failed")
	}
}

// Ensure Service implements RateProvider
var _ interfaces.RateProvider = (*Service)(nil)
