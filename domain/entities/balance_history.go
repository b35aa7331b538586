package entities

import (
	"errors"
	"time"
)

// TransactionType classifies a ledger balance change
type TransactionType string

const (
	TransactionTypeInitial    TransactionType = "initial"
	TransactionTypeBetStake   TransactionType = "bet_stake"
	TransactionTypeBetPayout  TransactionType = "bet_payout"
	TransactionTypeBetRefund  TransactionType = "bet_refund"
	TransactionTypeDailyClaim TransactionType = "daily_claim"
)

// RelatedType represents what kind of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeBet    RelatedType = "bet"
	RelatedTypeMarket RelatedType = "market"
)

// BalanceHistory is an append-only journal entry for a balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              string          `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}

// IsCredit returns true if the change amount is positive
func (bh *BalanceHistory) IsCredit() bool {
	return bh.ChangeAmount > 0
}

// Validate performs basic consistency checks on the entry
func (bh *BalanceHistory) Validate() error {
	if bh.ChangeAmount == 0 {
		return errors.New("change amount cannot be zero")
	}
	if bh.BalanceAfter != bh.BalanceBefore+bh.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}
	return nil
}
