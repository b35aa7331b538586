package interfaces

import (
	"context"
	"time"

	"longshot/domain/entities"
)

// AccountRepository manages points accounts.
// Balance mutations are single conditional statements so concurrent writers
// never race a read-modify-write cycle.
type AccountRepository interface {
	// GetByUserID returns the account, or nil if none exists
	GetByUserID(ctx context.Context, userID string) (*entities.Account, error)

	// Create inserts an account with the initial balance. Safe under
	// concurrent first calls: it never double-grants and returns the
	// surviving row, plus whether this call performed the insert.
	Create(ctx context.Context, userID string, initialBalance int64) (*entities.Account, bool, error)

	// DebitStake atomically deducts a stake and bumps total_wagered,
	// guarded by balance >= amount. Returns the new balance or
	// entities.ErrInsufficientFunds.
	DebitStake(ctx context.Context, userID string, amount int64) (int64, error)

	// Credit atomically adds to the balance and returns the new balance
	Credit(ctx context.Context, userID string, amount int64) (int64, error)

	// ClaimDaily atomically grants the daily amount iff the rolling window
	// has elapsed, stamping last_claim_at. Returns the updated account, or
	// nil when the claim window has not elapsed.
	ClaimDaily(ctx context.Context, userID string, amount int64, window time.Duration) (*entities.Account, error)
}

// MarketRepository manages market entities and their pool totals
type MarketRepository interface {
	Create(ctx context.Context, market *entities.Market) error

	// GetByID returns the market, or nil if none exists
	GetByID(ctx context.Context, id int64) (*entities.Market, error)

	// GetByIDForUpdate locks the market row for the current transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Market, error)

	// List returns markets matching the filter, newest first
	List(ctx context.Context, filter entities.MarketFilter) ([]*entities.Market, error)

	// RecordStake atomically increments the chosen pool, total_pool and
	// total_bettors, guarded by status='active' and resolve_at in the
	// future. The guard runs at statement time, so a market closed by a
	// concurrent resolver is rejected even after an earlier stale read.
	// Returns entities.ErrMarketNotFound / ErrMarketClosed / ErrMarketExpired.
	RecordStake(ctx context.Context, marketID int64, position entities.BetPosition, amount int64) error

	// GetExpiredActive returns active markets whose resolve_at has passed
	GetExpiredActive(ctx context.Context, limit int) ([]*entities.Market, error)

	// MarkResolved transitions active -> resolved. Returns false when the
	// market was not active, which makes overlapping resolution cycles no-ops.
	MarkResolved(ctx context.Context, id int64, outcome bool, priceAtResolution float64) (bool, error)

	// MarkCancelled transitions active -> cancelled with outcome null.
	// Returns false when the market was not active.
	MarkCancelled(ctx context.Context, id int64, priceAtResolution *float64) (bool, error)

	// ActiveOrRecentFingerprintExists reports whether a market with this
	// fingerprint is active or was created after the cutoff
	ActiveOrRecentFingerprintExists(ctx context.Context, fingerprint string, createdAfter time.Time) (bool, error)

	// Search matches question text or token symbol, newest first
	Search(ctx context.Context, query string, limit int) ([]*entities.Market, error)

	// UpdateNarrative sets the narrative tag on a market
	UpdateNarrative(ctx context.Context, id int64, narrative string) error

	// ListUntagged returns markets whose narrative is null
	ListUntagged(ctx context.Context, limit int) ([]*entities.Market, error)
}

// BetRepository manages bet rows
type BetRepository interface {
	// Create inserts a bet. A (market_id, user_id) uniqueness violation is
	// returned as entities.ErrDuplicateBet.
	Create(ctx context.Context, bet *entities.Bet) error

	// GetByMarketAndUser returns the user's bet on a market, or nil
	GetByMarketAndUser(ctx context.Context, marketID int64, userID string) (*entities.Bet, error)

	// ListByMarket returns all bets on a market in placement order
	ListByMarket(ctx context.Context, marketID int64) ([]*entities.Bet, error)

	// ListByUser returns the user's bets matching the filter, newest first
	ListByUser(ctx context.Context, userID string, filter entities.BetFilter) ([]*entities.Bet, error)

	// GetForMarkets returns the user's bets keyed by market ID
	GetForMarkets(ctx context.Context, userID string, marketIDs []int64) (map[int64]*entities.Bet, error)

	// SetOutcome marks a bet's settlement exactly once
	SetOutcome(ctx context.Context, betID int64, isWinner bool, payout int64) error

	// GetUserStats aggregates the user's betting record
	GetUserStats(ctx context.Context, userID string) (*entities.BettorStats, error)
}

// BalanceHistoryRepository records ledger journal entries
type BalanceHistoryRepository interface {
	Record(ctx context.Context, history *entities.BalanceHistory) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*entities.BalanceHistory, error)
}
