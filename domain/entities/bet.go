package entities

import "time"

// BetPosition is the side of a binary market a bet backs
type BetPosition string

const (
	BetPositionYes BetPosition = "yes"
	BetPositionNo  BetPosition = "no"
)

// IsValid checks the position enum
func (p BetPosition) IsValid() bool {
	return p == BetPositionYes || p == BetPositionNo
}

// Bet represents a user's stake on one side of a market.
// A user holds at most one bet per market and a placed bet is final.
type Bet struct {
	ID        int64       `db:"id"`
	MarketID  int64       `db:"market_id"`
	UserID    string      `db:"user_id"`
	Position  BetPosition `db:"position"`
	Amount    int64       `db:"amount"`
	Payout    *int64      `db:"payout"`
	IsWinner  *bool       `db:"is_winner"`
	CreatedAt time.Time   `db:"created_at"`
}

// IsSettled checks whether resolution has marked this bet
func (b *Bet) IsSettled() bool {
	return b.IsWinner != nil
}

// Won checks whether the bet has been settled as a winner
func (b *Bet) Won() bool {
	return b.IsWinner != nil && *b.IsWinner
}

// Backs checks whether the bet backs the given outcome
func (b *Bet) Backs(outcome bool) bool {
	if outcome {
		return b.Position == BetPositionYes
	}
	return b.Position == BetPositionNo
}

// CalculatePayout computes the pari-mutuel payout for a winning bet:
// the bettor's proportional share of the entire pool, floored to integer points.
func (b *Bet) CalculatePayout(totalPool, winningPool int64) int64 {
	if winningPool == 0 {
		return 0
	}
	return (b.Amount * totalPool) / winningPool
}

// BetFilter narrows bet history listings
type BetFilter struct {
	Settled *bool
	Limit   int
	Offset  int
}

// BettorStats aggregates a user's betting record
type BettorStats struct {
	Wins         int   `db:"wins"`
	Losses       int   `db:"losses"`
	Pending      int   `db:"pending"`
	TotalWagered int64 `db:"total_wagered"`
	TotalWon     int64 `db:"total_won"`
}

// NetPnL returns winnings minus all stakes. Pending stakes count as spent
// until their market settles or refunds them.
func (s *BettorStats) NetPnL() int64 {
	return s.TotalWon - s.TotalWagered
}
