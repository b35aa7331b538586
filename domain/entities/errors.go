package entities

import (
	"errors"
	"fmt"
	"time"
)

// Domain conflict errors. These are expected business outcomes surfaced to
// callers with a reason; they are never retried.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMarketNotFound    = errors.New("market not found")
	ErrMarketClosed      = errors.New("market is not accepting bets")
	ErrMarketExpired     = errors.New("market betting window has passed")
	ErrDuplicateBet      = errors.New("bet already placed on this market")
	ErrAlreadyClaimed    = errors.New("daily points already claimed")
)

// AlreadyClaimedError carries the remaining wait until the next daily claim
type AlreadyClaimedError struct {
	RetryAfter time.Duration
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("daily points already claimed, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *AlreadyClaimedError) Unwrap() error {
	return ErrAlreadyClaimed
}
