package entities

import (
	"errors"
	"time"
)

// Account represents a user's points balance
type Account struct {
	UserID       string     `db:"user_id"`
	Balance      int64      `db:"balance"`
	TotalWagered int64      `db:"total_wagered"`
	LastClaimAt  *time.Time `db:"last_claim_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// CanAfford checks if the account has sufficient balance for an amount
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// ValidateAmount checks if an amount is valid (positive and affordable)
func (a *Account) ValidateAmount(amount int64) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	if !a.CanAfford(amount) {
		return errors.New("insufficient balance")
	}
	return nil
}

// CanClaimDaily checks whether the rolling claim window has elapsed
func (a *Account) CanClaimDaily(now time.Time, window time.Duration) bool {
	if a.LastClaimAt == nil {
		return true
	}
	return now.Sub(*a.LastClaimAt) >= window
}

// NextClaimIn returns how long until the next daily claim is allowed
func (a *Account) NextClaimIn(now time.Time, window time.Duration) time.Duration {
	if a.LastClaimAt == nil {
		return 0
	}
	remaining := window - now.Sub(*a.LastClaimAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
