package server

import (
	"fmt"
	"net/http"
	"time"
)

// --- Portfolio handlers ---

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()
	investments, transactions, err := s.app.Ledger.Load(ctx)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading ledger: %v", err))
		return
	}

	totals := s.app.Portfolio.ComputePortfolioTotals(ctx, investments, transactions)
	WriteJSON(w, http.StatusOK, totals)
}

func (s *Server) handlePortfolioTimeline(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	from, to, ok := parseTimelineRange(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	investments, transactions, err := s.app.Ledger.Load(ctx)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading ledger: %v", err))
		return
	}

	points := s.app.Portfolio.GenerateTimeline(ctx, investments, transactions, from, to)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"currency": s.app.Config.ReferenceCurrency,
		"points":   points,
		"count":    len(points),
	})
}

func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	from, to, ok := parseTimelineRange(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	investments, transactions, err := s.app.Ledger.Load(ctx)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading ledger: %v", err))
		return
	}

	points := s.app.Portfolio.GenerateTimeline(ctx, investments, transactions, from, to)
	title := fmt.Sprintf("Portfolio Value (%s)", s.app.Config.ReferenceCurrency)
	png, err := s.app.Portfolio.RenderTimelineChart(points, title)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Chart error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// parseTimelineRange reads optional from/to query parameters. Zero times tell
// the timeline generator to use its own bounds.
func parseTimelineRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid from date '%s' (use YYYY-MM-DD)", fromStr))
			return time.Time{}, time.Time{}, false
		}
		from = t
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid to date '%s' (use YYYY-MM-DD)", toStr))
			return time.Time{}, time.Time{}, false
		}
		to = t
	}

	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		WriteError(w, http.StatusBadRequest, "to date must not be before from date")
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}
