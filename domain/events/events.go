package events

import "longshot/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBetPlaced      EventType = "bet_placed"
	EventTypeMarketCreated  EventType = "market_created"
	EventTypeMarketResolved EventType = "market_resolved"
	EventTypeBalanceChange  EventType = "balance_change"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BetPlacedEvent represents a bet that was placed
type BetPlacedEvent struct {
	BetID    int64
	MarketID int64
	UserID   string
	Position entities.BetPosition
	Amount   int64
	Balance  int64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// MarketCreatedEvent represents a newly generated market
type MarketCreatedEvent struct {
	MarketID    int64
	Question    string
	TokenSymbol string
	MarketType  entities.MarketType
	ResolveAt   int64
}

func (e MarketCreatedEvent) Type() EventType {
	return EventTypeMarketCreated
}

// MarketResolvedEvent represents a market reaching a terminal state
type MarketResolvedEvent struct {
	MarketID  int64
	Question  string
	Status    entities.MarketStatus
	Outcome   *bool
	TotalPool int64
	Winners   int
}

func (e MarketResolvedEvent) Type() EventType {
	return EventTypeMarketResolved
}

// BalanceChangeEvent represents a ledger balance change that occurred
type BalanceChangeEvent struct {
	UserID          string
	OldBalance      int64
	NewBalance      int64
	ChangeAmount    int64
	TransactionType entities.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}
