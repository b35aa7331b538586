package interfaces

import (
	"context"
	"time"

	"longshot/domain/entities"
	"longshot/domain/events"
)

// EventPublisher publishes domain events to interested subscribers.
// Delivery is fire-and-forget; publish failures never fail the operation
// that raised the event.
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding
// transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all pending events after a successful commit
	Flush(ctx context.Context) error

	// Discard drops all pending events on rollback
	Discard()
}

// PriceOracle supplies current token prices for market resolution.
// A nil price with a nil error means the oracle has no reading for the token.
type PriceOracle interface {
	GetCurrentPrice(ctx context.Context, tokenAddress string) (*float64, error)
}

// SignalFeed supplies recent token market activity for market generation.
// Signals observed before since are excluded; limit caps the result count.
type SignalFeed interface {
	ListRecentSignals(ctx context.Context, since time.Time, limit int) ([]*entities.TokenSignal, error)
}

// UnitOfWork scopes a set of repository operations to one database
// transaction. Events queued on EventBus are published only after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	MarketRepository() MarketRepository
	BetRepository() BetRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
