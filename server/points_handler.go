package server

import (
	"context"
	"net/http"
	"strconv"

	"longshot/domain/entities"
)

// Ledger is the slice of the ledger service the points handler uses
type Ledger interface {
	GetOrCreateAccount(ctx context.Context, userID string) (*entities.Account, error)
	ClaimDaily(ctx context.Context, userID string) (*entities.Account, int64, error)
	GetBalanceHistory(ctx context.Context, userID string, limit int) ([]*entities.BalanceHistory, error)
}

// PointsHandler serves the points account surface
type PointsHandler struct {
	ledger Ledger
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(ledger Ledger) *PointsHandler {
	return &PointsHandler{ledger: ledger}
}

// GetAccount handles GET /api/points. First sight of a user creates their
// account at the starting balance.
func (h *PointsHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.GetOrCreateAccount(r.Context(), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// Claim handles POST /api/points/claim
func (h *PointsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	account, granted, err := h.ledger.ClaimDaily(r.Context(), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balance": account.Balance,
		"granted": granted,
	})
}

// History handles GET /api/points/history
func (h *PointsHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := h.ledger.GetBalanceHistory(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	entries := make([]*historyResponse, len(history))
	for i, entry := range history {
		entries[i] = toHistoryResponse(entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}
