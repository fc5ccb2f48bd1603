package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karpatel/nivesh/internal/models"
)

// --- Investment handlers ---

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		investments, err := s.app.Ledger.ListInvestments(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing investments: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"investments": investments,
			"count":       len(investments),
		})

	case http.MethodPost:
		var req struct {
			Name              string           `json:"name"`
			Ticker            string           `json:"ticker"`
			Currency          string           `json:"currency"`
			FiveYearReturnPct *decimal.Decimal `json:"five_year_return_pct"`
			TenYearReturnPct  *decimal.Decimal `json:"ten_year_return_pct"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		inv := models.NewInvestment(strings.TrimSpace(req.Name), req.Ticker, models.Currency(strings.ToUpper(strings.TrimSpace(req.Currency))))
		inv.FiveYearReturnPct = req.FiveYearReturnPct
		inv.TenYearReturnPct = req.TenYearReturnPct
		if err := inv.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := s.app.Ledger.GetInvestment(r.Context(), inv.Name); err == nil {
			WriteError(w, http.StatusConflict, fmt.Sprintf("investment '%s' already exists", inv.Name))
			return
		}

		if err := s.app.Ledger.SaveInvestment(r.Context(), inv); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving investment: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, inv)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleInvestment(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		inv, err := s.app.Ledger.GetInvestment(ctx, name)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading investment: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, inv)

	case http.MethodPut:
		var req struct {
			Ticker            *string          `json:"ticker"`
			Currency          *string          `json:"currency"`
			FiveYearReturnPct *decimal.Decimal `json:"five_year_return_pct"`
			TenYearReturnPct  *decimal.Decimal `json:"ten_year_return_pct"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		inv, err := s.app.Ledger.GetInvestment(ctx, name)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading investment: %v", err))
			return
		}

		// Name is the ledger key; renames are not supported.
		if req.Ticker != nil {
			inv.Ticker = strings.TrimSpace(*req.Ticker)
			inv.Kind = models.DetectInstrumentKind(inv.Ticker)
		}
		if req.Currency != nil {
			inv.Currency = models.Currency(strings.ToUpper(strings.TrimSpace(*req.Currency)))
		}
		if req.FiveYearReturnPct != nil {
			inv.FiveYearReturnPct = req.FiveYearReturnPct
		}
		if req.TenYearReturnPct != nil {
			inv.TenYearReturnPct = req.TenYearReturnPct
		}
		if err := inv.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := s.app.Ledger.SaveInvestment(ctx, *inv); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving investment: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, inv)

	case http.MethodDelete:
		if _, err := s.app.Ledger.GetInvestment(ctx, name); err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading investment: %v", err))
			return
		}

		// Remove the holding's transactions so the ledger carries no orphans.
		transactions, err := s.app.Ledger.GetTransactions(ctx, name)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading transactions: %v", err))
			return
		}
		removed := 0
		for _, tx := range transactions {
			if err := s.app.Ledger.DeleteTransaction(ctx, tx.ID); err != nil {
				WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting transaction: %v", err))
				return
			}
			removed++
		}

		if err := s.app.Ledger.DeleteInvestment(ctx, name); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting investment: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"deleted":              name,
			"transactions_removed": removed,
		})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleInvestmentTransactions(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()

	if _, err := s.app.Ledger.GetInvestment(ctx, name); err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading investment: %v", err))
		return
	}

	switch r.Method {
	case http.MethodGet:
		transactions, err := s.app.Ledger.GetTransactions(ctx, name)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading transactions: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"holding":      name,
			"transactions": transactions,
			"count":        len(transactions),
		})

	case http.MethodPost:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}

		// The path names the holding; the body cannot redirect it.
		tx.Holding = name
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		if err := tx.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := s.app.Ledger.SaveTransaction(ctx, tx); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving transaction: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, tx)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleInvestmentMetrics(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()
	inv, err := s.app.Ledger.GetInvestment(ctx, name)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading investment: %v", err))
		return
	}

	transactions, err := s.app.Ledger.GetTransactions(ctx, name)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading transactions: %v", err))
		return
	}

	metrics := s.app.Portfolio.ComputeHoldingMetrics(ctx, *inv, transactions)
	WriteJSON(w, http.StatusOK, metrics)
}

// --- Transaction handlers ---

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodPut:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}

		tx.ID = id
		if tx.Holding == "" {
			WriteError(w, http.StatusBadRequest, "holding is required")
			return
		}
		if _, err := s.app.Ledger.GetInvestment(ctx, tx.Holding); err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading investment: %v", err))
			return
		}
		if err := tx.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := s.app.Ledger.SaveTransaction(ctx, tx); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving transaction: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, tx)

	case http.MethodDelete:
		if err := s.app.Ledger.DeleteTransaction(ctx, id); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting transaction: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{
			"deleted": id,
		})

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}
