// Package portfolio computes valuation and return metrics over the
// transaction ledger: per-holding and portfolio-wide XIRR, windowed returns,
// and the historical value timeline.
package portfolio

import (
	"time"

	"github.com/karpatel/nivesh/internal/common"
	"github.com/karpatel/nivesh/internal/interfaces"
	"github.com/karpatel/nivesh/internal/models"
)

// Service implements PortfolioService.
type Service struct {
	rates       interfaces.RateProvider
	refCurrency models.Currency
	floor       time.Time
	logger      *common.Logger
	now         func() time.Time // injectable clock for testing
}

// NewService creates a new portfolio service.
func NewService(rates interfaces.RateProvider, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		rates:       rates,
		refCurrency: models.Currency(config.ReferenceCurrency),
		floor:       config.Timeline.FloorDate(),
		logger:      logger,
		now:         time.Now,
	}
}

// today returns the current date at day resolution in UTC. All valuation
// dates in the engine are day-resolution.
func (s *Service) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
