package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/karpatel/nivesh/internal/clients/alphavantage"
	"github.com/karpatel/nivesh/internal/clients/captnemo"
	"github.com/karpatel/nivesh/internal/clients/frankfurter"
	"github.com/karpatel/nivesh/internal/clients/mfapi"
	"github.com/karpatel/nivesh/internal/clients/yahoo"
	"github.com/karpatel/nivesh/internal/common"
	"github.com/karpatel/nivesh/internal/interfaces"
	"github.com/karpatel/nivesh/internal/services/portfolio"
	"github.com/karpatel/nivesh/internal/services/rates"
	"github.com/karpatel/nivesh/internal/storage/badger"
	"github.com/karpatel/nivesh/internal/storage/ratefs"
)

// App holds all initialized services, clients, and storage.
// It is the shared core behind cmd/nivesh-server.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Ledger      interfaces.LedgerStore
	Rates       interfaces.RateProvider
	Portfolio   interfaces.PortfolioService
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services. configPath may be
// empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: provided path, NIVESH_CONFIG, binary dir, then the
	// development fallback
	if configPath == "" {
		configPath = os.Getenv("NIVESH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "nivesh.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/nivesh.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory so the server
	// is self-contained wherever it is installed
	if config.Storage.Ledger.Path != "" && !filepath.IsAbs(config.Storage.Ledger.Path) {
		config.Storage.Ledger.Path = filepath.Join(binDir, config.Storage.Ledger.Path)
	}
	if config.Storage.Rates.Path != "" && !filepath.IsAbs(config.Storage.Rates.Path) {
		config.Storage.Rates.Path = filepath.Join(binDir, config.Storage.Rates.Path)
	}

	logger := common.NewLogger(config.Logging.Level, config.Logging.Format)

	store, err := badger.NewStore(logger, config.Storage.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger storage: %w", err)
	}
	ledger := badger.NewLedgerStorage(store, logger)

	rateStore, err := ratefs.NewStore(logger, config.Storage.Rates.Path)
	if err != nil {
		ledger.Close()
		return nil, fmt.Errorf("failed to open rate cache storage: %w", err)
	}

	if config.Clients.AlphaVantage.APIKey == "" {
		logger.Warn().Msg("Alpha Vantage API key not configured, market quotes will rely on the cache")
	}
	avClient := alphavantage.NewClient(config.Clients.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(config.Clients.AlphaVantage.BaseURL),
		alphavantage.WithLogger(logger),
		alphavantage.WithRateLimit(config.Clients.AlphaVantage.RateLimit),
		alphavantage.WithTimeout(config.Clients.AlphaVantage.GetTimeout()),
	)
	mfClient := mfapi.NewClient(
		mfapi.WithBaseURL(config.Clients.MFAPI.BaseURL),
		mfapi.WithLogger(logger),
		mfapi.WithRateLimit(config.Clients.MFAPI.RateLimit),
		mfapi.WithTimeout(config.Clients.MFAPI.GetTimeout()),
	)
	nemoClient := captnemo.NewClient(
		captnemo.WithBaseURL(config.Clients.Captnemo.BaseURL),
		captnemo.WithLogger(logger),
		captnemo.WithRateLimit(config.Clients.Captnemo.RateLimit),
		captnemo.WithTimeout(config.Clients.Captnemo.GetTimeout()),
	)
	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)
	fxClient := frankfurter.NewClient(
		frankfurter.WithBaseURL(config.Clients.Frankfurter.BaseURL),
		frankfurter.WithLogger(logger),
		frankfurter.WithRateLimit(config.Clients.Frankfurter.RateLimit),
		frankfurter.WithTimeout(config.Clients.Frankfurter.GetTimeout()),
	)

	lookback := config.Rates.Lookback()
	sources := map[string]interfaces.PriceSource{
		rates.SourceMutualFund: rates.NewMutualFundSource(mfClient, lookback),
		rates.SourceISIN:       rates.NewISINSource(nemoClient, yahooClient, lookback),
		rates.SourceMarket:     rates.NewMarketSource(avClient, yahooClient, lookback),
	}

	rateService, err := rates.NewService(rateStore, sources, fxClient, &config.Rates, logger)
	if err != nil {
		ledger.Close()
		return nil, fmt.Errorf("failed to initialize rate provider: %w", err)
	}

	portfolioService := portfolio.NewService(rateService, config, logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Ledger:      ledger,
		Rates:       rateService,
		Portfolio:   portfolioService,
		StartupTime: startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Ledger != nil {
		if err := a.Ledger.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Ledger close failed")
		}
		a.Ledger = nil
	}
}
