package entities

import (
	"fmt"
	"strings"
	"time"
)

// MarketStatus represents the lifecycle state of a market
type MarketStatus string

const (
	MarketStatusActive    MarketStatus = "active"
	MarketStatusResolved  MarketStatus = "resolved"
	MarketStatusCancelled MarketStatus = "cancelled"
)

// MarketType determines the question template, resolution horizon and outcome rule
type MarketType string

const (
	// MarketTypePriceAbove asks whether the token trades above a price level at resolution.
	MarketTypePriceAbove MarketType = "price_above"
	// MarketTypePriceChange asks whether the token moves by a percentage within the horizon.
	MarketTypePriceChange MarketType = "price_change"
)

// Market represents a single binary prediction question with a resolution deadline
type Market struct {
	ID                int64        `db:"id"`
	Question          string       `db:"question"`
	TokenAddress      string       `db:"token_address"`
	TokenSymbol       string       `db:"token_symbol"`
	TokenName         string       `db:"token_name"`
	Narrative         *string      `db:"narrative"`
	MarketType        MarketType   `db:"market_type"`
	Status            MarketStatus `db:"status"`
	Outcome           *bool        `db:"outcome"`
	ThresholdPrice    float64      `db:"threshold_price"`
	ChangePercent     float64      `db:"change_percent"`
	PriceAtCreation   float64      `db:"price_at_creation"`
	PriceAtResolution *float64     `db:"price_at_resolution"`
	YesPool           int64        `db:"yes_pool"`
	NoPool            int64        `db:"no_pool"`
	TotalPool         int64        `db:"total_pool"`
	TotalBettors      int          `db:"total_bettors"`
	Fingerprint       string       `db:"fingerprint"`
	ResolveAt         time.Time    `db:"resolve_at"`
	ResolvedAt        *time.Time   `db:"resolved_at"`
	CreatedAt         time.Time    `db:"created_at"`
}

// IsActive checks if the market is still in its active state
func (m *Market) IsActive() bool {
	return m.Status == MarketStatusActive
}

// IsTerminal checks if the market has reached a terminal state
func (m *Market) IsTerminal() bool {
	return m.Status == MarketStatusResolved || m.Status == MarketStatusCancelled
}

// IsExpired checks if the betting window has passed
func (m *Market) IsExpired(now time.Time) bool {
	return now.After(m.ResolveAt)
}

// CanAcceptBets checks if the market can still accept bets
func (m *Market) CanAcceptBets(now time.Time) bool {
	return m.IsActive() && !m.IsExpired(now)
}

// PoolFor returns the pool total for one side
func (m *Market) PoolFor(position BetPosition) int64 {
	if position == BetPositionYes {
		return m.YesPool
	}
	return m.NoPool
}

// WinningPool returns the pool backing the given outcome
func (m *Market) WinningPool(outcome bool) int64 {
	if outcome {
		return m.YesPool
	}
	return m.NoPool
}

// SecondsToResolve returns the remaining betting window, floored at zero
func (m *Market) SecondsToResolve(now time.Time) int64 {
	remaining := int64(m.ResolveAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarketFingerprint derives the dedup key for a token/question combination.
// Near-identical markets for the same token and type share a fingerprint.
func MarketFingerprint(tokenAddress string, marketType MarketType) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(tokenAddress), marketType)
}

// MarketFilter narrows market listings
type MarketFilter struct {
	Status     *MarketStatus
	MarketType *MarketType
	Limit      int
	Offset     int
}

// ResolutionSummary reports the outcome of one resolution cycle
type ResolutionSummary struct {
	Resolved  int
	Cancelled int
	Errors    int
}

// GenerationSummary reports the outcome of one generation cycle
type GenerationSummary struct {
	Created int
	Skipped int
	Errors  int
}
