package server

import (
	"context"
	"net/http"

	"longshot/domain/entities"
	"longshot/domain/services"
)

// Betting is the slice of the betting service the bet handler uses
type Betting interface {
	PlaceBet(ctx context.Context, userID string, marketID int64, position entities.BetPosition, amount int64) (*services.BetResult, error)
	GetUserBets(ctx context.Context, userID string, filter entities.BetFilter) ([]*entities.Bet, *entities.BettorStats, error)
}

// BetHandler serves bet placement and bet history
type BetHandler struct {
	betting Betting
}

// NewBetHandler creates a new bet handler
func NewBetHandler(betting Betting) *BetHandler {
	return &BetHandler{betting: betting}
}

type placeBetRequest struct {
	MarketID int64  `json:"market_id"`
	Position string `json:"position"`
	Amount   int64  `json:"amount"`
}

// Place handles POST /api/bets
func (h *BetHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}

	result, err := h.betting.PlaceBet(r.Context(), UserID(r.Context()), req.MarketID, entities.BetPosition(req.Position), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"bet":     toBetResponse(result.Bet),
		"balance": result.NewBalance,
	})
}

// List handles GET /api/bets
func (h *BetHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := entities.BetFilter{}
	filter.Limit, filter.Offset = parsePagination(r)

	switch r.URL.Query().Get("status") {
	case "":
	case "settled":
		settled := true
		filter.Settled = &settled
	case "pending":
		settled := false
		filter.Settled = &settled
	default:
		writeError(w, http.StatusBadRequest, "invalid_input", "status must be settled or pending")
		return
	}

	bets, stats, err := h.betting.GetUserBets(r.Context(), UserID(r.Context()), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bets": toBetResponses(bets),
		"summary": map[string]any{
			"wins":          stats.Wins,
			"losses":        stats.Losses,
			"pending":       stats.Pending,
			"total_wagered": stats.TotalWagered,
			"total_won":     stats.TotalWon,
			"net_pnl":       stats.NetPnL(),
		},
	})
}
