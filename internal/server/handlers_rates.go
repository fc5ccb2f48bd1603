package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/karpatel/nivesh/internal/models"
	"github.com/karpatel/nivesh/internal/services/rates"
)

// --- Rate handlers ---

func (s *Server) handleFXRate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	base := models.Currency(strings.ToUpper(strings.TrimSpace(q.Get("base"))))
	quote := models.Currency(strings.ToUpper(strings.TrimSpace(q.Get("quote"))))
	if !base.IsValid() || !quote.IsValid() {
		WriteError(w, http.StatusBadRequest, "base and quote must name supported currencies (USD, INR)")
		return
	}

	ctx := r.Context()
	resp := map[string]interface{}{
		"base":  base,
		"quote": quote,
	}

	if dateStr := q.Get("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid date '%s' (use YYYY-MM-DD)", dateStr))
			return
		}
		rate, err := s.app.Rates.FXRateOn(ctx, base, quote, date)
		if err != nil {
			writeRateError(w, fmt.Sprintf("%s/%s", base, quote), err)
			return
		}
		resp["date"] = date.Format("2006-01-02")
		resp["rate"] = rate
		WriteJSON(w, http.StatusOK, resp)
		return
	}

	rate, err := s.app.Rates.FXRate(ctx, base, quote)
	if err != nil {
		writeRateError(w, fmt.Sprintf("%s/%s", base, quote), err)
		return
	}
	resp["rate"] = rate
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRateLookup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/rates/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	ctx := r.Context()
	q := r.URL.Query()

	if dateStr := q.Get("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid date '%s' (use YYYY-MM-DD)", dateStr))
			return
		}
		rate, err := s.app.Rates.HistoricalRate(ctx, id, date)
		if err != nil {
			writeRateError(w, id, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"instrument": id,
			"date":       date.Format("2006-01-02"),
			"rate":       rate,
		})
		return
	}

	force := q.Get("force") == "true"
	rate, err := s.app.Rates.CurrentRate(ctx, id, force)
	if err != nil {
		writeRateError(w, id, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"instrument": id,
		"rate":       rate,
	})
}

// writeRateError maps provider failures: an unavailable rate is an upstream
// problem, anything else a server fault.
func writeRateError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, rates.ErrUnavailable) {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("No rate available for '%s'", id))
		return
	}
	WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Rate lookup failed: %v", err))
}
