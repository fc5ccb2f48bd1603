package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/karpatel/nivesh/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Ledger
	mux.HandleFunc("/api/investments/", s.routeInvestments)
	mux.HandleFunc("/api/investments", s.handleInvestments)
	mux.HandleFunc("/api/transactions/", s.routeTransactions)

	// Portfolio
	mux.HandleFunc("/api/portfolio/summary", s.handlePortfolioSummary)
	mux.HandleFunc("/api/portfolio/timeline", s.handlePortfolioTimeline)
	mux.HandleFunc("/api/portfolio/chart", s.handlePortfolioChart)

	// Rates
	mux.HandleFunc("/api/rates/fx", s.handleFXRate)
	mux.HandleFunc("/api/rates/", s.handleRateLookup)
}

// routeInvestments dispatches /api/investments/{name}/* to the appropriate handler.
func (s *Server) routeInvestments(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/investments/")
	if path == "" {
		s.handleInvestments(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	name := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleInvestment(w, r, name)
	case "transactions":
		s.handleInvestmentTransactions(w, r, name)
	case "metrics":
		s.handleInvestmentMetrics(w, r, name)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeTransactions dispatches /api/transactions/{id} to the appropriate handler.
func (s *Server) routeTransactions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleTransaction(w, r, id)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":             cfg.Environment,
		"reference_currency":      cfg.ReferenceCurrency,
		"ledger_path":             cfg.Storage.Ledger.Path,
		"rates_path":              cfg.Storage.Rates.Path,
		"rate_freshness_hours":    cfg.Rates.FreshnessHours,
		"rate_lookback_days":      cfg.Rates.LookbackDays,
		"timeline_floor":          cfg.Timeline.FloorDate().Format("2006-01-02"),
		"logging_level":           cfg.Logging.Level,
		"alphavantage_configured": cfg.Clients.AlphaVantage.APIKey != "",
		"uptime":                  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}
