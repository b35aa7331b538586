package server

import (
	"time"

	"longshot/domain/entities"
	"longshot/domain/services"
)

// marketResponse is the wire shape of a market
type marketResponse struct {
	ID                int64         `json:"id"`
	Question          string        `json:"question"`
	TokenAddress      string        `json:"token_address"`
	TokenSymbol       string        `json:"token_symbol"`
	TokenName         string        `json:"token_name"`
	Narrative         *string       `json:"narrative,omitempty"`
	MarketType        string        `json:"market_type"`
	Status            string        `json:"status"`
	Outcome           *bool         `json:"outcome,omitempty"`
	ThresholdPrice    float64       `json:"threshold_price,omitempty"`
	ChangePercent     float64       `json:"change_percent,omitempty"`
	PriceAtCreation   float64       `json:"price_at_creation"`
	PriceAtResolution *float64      `json:"price_at_resolution,omitempty"`
	YesPool           int64         `json:"yes_pool"`
	NoPool            int64         `json:"no_pool"`
	TotalPool         int64         `json:"total_pool"`
	TotalBettors      int           `json:"total_bettors"`
	SecondsToResolve  int64         `json:"seconds_to_resolve"`
	ResolveAt         time.Time     `json:"resolve_at"`
	ResolvedAt        *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	MyBet             *betResponse  `json:"my_bet,omitempty"`
}

// betResponse is the wire shape of a bet
type betResponse struct {
	ID        int64     `json:"id"`
	MarketID  int64     `json:"market_id"`
	UserID    string    `json:"user_id"`
	Position  string    `json:"position"`
	Amount    int64     `json:"amount"`
	Payout    *int64    `json:"payout,omitempty"`
	IsWinner  *bool     `json:"is_winner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// accountResponse is the wire shape of a points account
type accountResponse struct {
	UserID       string     `json:"user_id"`
	Balance      int64      `json:"balance"`
	TotalWagered int64      `json:"total_wagered"`
	LastClaimAt  *time.Time `json:"last_claim_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// historyResponse is the wire shape of a balance journal entry
type historyResponse struct {
	ID              int64          `json:"id"`
	BalanceBefore   int64          `json:"balance_before"`
	BalanceAfter    int64          `json:"balance_after"`
	ChangeAmount    int64          `json:"change_amount"`
	TransactionType string         `json:"transaction_type"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	RelatedID       *int64         `json:"related_id,omitempty"`
	RelatedType     *string        `json:"related_type,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func toMarketResponse(m *entities.Market, now time.Time) *marketResponse {
	return &marketResponse{
		ID:                m.ID,
		Question:          m.Question,
		TokenAddress:      m.TokenAddress,
		TokenSymbol:       m.TokenSymbol,
		TokenName:         m.TokenName,
		Narrative:         m.Narrative,
		MarketType:        string(m.MarketType),
		Status:            string(m.Status),
		Outcome:           m.Outcome,
		ThresholdPrice:    m.ThresholdPrice,
		ChangePercent:     m.ChangePercent,
		PriceAtCreation:   m.PriceAtCreation,
		PriceAtResolution: m.PriceAtResolution,
		YesPool:           m.YesPool,
		NoPool:            m.NoPool,
		TotalPool:         m.TotalPool,
		TotalBettors:      m.TotalBettors,
		SecondsToResolve:  m.SecondsToResolve(now),
		ResolveAt:         m.ResolveAt,
		ResolvedAt:        m.ResolvedAt,
		CreatedAt:         m.CreatedAt,
	}
}

func toMarketViewResponse(v *services.MarketView, now time.Time) *marketResponse {
	resp := toMarketResponse(v.Market, now)
	if v.MyBet != nil {
		resp.MyBet = toBetResponse(v.MyBet)
	}
	return resp
}

func toBetResponse(b *entities.Bet) *betResponse {
	return &betResponse{
		ID:        b.ID,
		MarketID:  b.MarketID,
		UserID:    b.UserID,
		Position:  string(b.Position),
		Amount:    b.Amount,
		Payout:    b.Payout,
		IsWinner:  b.IsWinner,
		CreatedAt: b.CreatedAt,
	}
}

func toBetResponses(bets []*entities.Bet) []*betResponse {
	out := make([]*betResponse, len(bets))
	for i, b := range bets {
		out[i] = toBetResponse(b)
	}
	return out
}

func toAccountResponse(a *entities.Account) *accountResponse {
	return &accountResponse{
		UserID:       a.UserID,
		Balance:      a.Balance,
		TotalWagered: a.TotalWagered,
		LastClaimAt:  a.LastClaimAt,
		CreatedAt:    a.CreatedAt,
	}
}

func toHistoryResponse(h *entities.BalanceHistory) *historyResponse {
	resp := &historyResponse{
		ID:              h.ID,
		BalanceBefore:   h.BalanceBefore,
		BalanceAfter:    h.BalanceAfter,
		ChangeAmount:    h.ChangeAmount,
		TransactionType: string(h.TransactionType),
		Metadata:        h.TransactionMetadata,
		RelatedID:       h.RelatedID,
		CreatedAt:       h.CreatedAt,
	}
	if h.RelatedType != nil {
		s := string(*h.RelatedType)
		resp.RelatedType = &s
	}
	return resp
}
