package services

import (
	"context"
	"fmt"
	"time"

	"longshot/config"
	"longshot/domain/entities"
	"longshot/domain/events"
	"longshot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// BetResult is what a successful bet placement returns
type BetResult struct {
	Bet        *entities.Bet
	NewBalance int64
}

// BettingService places bets on active markets
type BettingService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory interfaces.UnitOfWorkFactory) *BettingService {
	return &BettingService{uowFactory: uowFactory}
}

// PlaceBet stakes points on one side of a market. The whole flow runs in one
// transaction: the debit, the bet row, the pool increment and the journal
// entry either all commit or none do, so a late failure is its own refund.
func (s *BettingService) PlaceBet(ctx context.Context, userID string, marketID int64, position entities.BetPosition, amount int64) (*BetResult, error) {
	cfg := config.Get()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", entities.ErrInvalidInput)
	}
	if marketID <= 0 {
		return nil, fmt.Errorf("%w: market id is required", entities.ErrInvalidInput)
	}
	if !position.IsValid() {
		return nil, fmt.Errorf("%w: position must be yes or no", entities.ErrInvalidInput)
	}
	if amount < cfg.MinBetAmount || amount > cfg.MaxBetAmount {
		return nil, fmt.Errorf("%w: amount must be between %d and %d", entities.ErrInvalidInput, cfg.MinBetAmount, cfg.MaxBetAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	market, err := uow.MarketRepository().GetByID(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}
	if market == nil {
		return nil, entities.ErrMarketNotFound
	}
	if !market.IsActive() {
		return nil, entities.ErrMarketClosed
	}
	if market.IsExpired(time.Now().UTC()) {
		return nil, entities.ErrMarketExpired
	}

	if _, _, err := getOrCreateAccount(ctx, uow, userID); err != nil {
		return nil, err
	}

	// Friendly pre-check; the conditional UPDATE below is the real guard.
	existing, err := uow.BetRepository().GetByMarketAndUser(ctx, marketID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bet: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrDuplicateBet
	}

	newBalance, err := uow.AccountRepository().DebitStake(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	bet := &entities.Bet{
		MarketID: marketID,
		UserID:   userID,
		Position: position,
		Amount:   amount,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		// Rollback reverts the debit, so a racing duplicate costs nothing.
		return nil, err
	}

	if err := uow.MarketRepository().RecordStake(ctx, marketID, position, amount); err != nil {
		return nil, err
	}

	// Derive the journal from the debit result, not the earlier read: a
	// concurrent debit may have moved the balance in between.
	history := &entities.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   newBalance + amount,
		BalanceAfter:    newBalance,
		ChangeAmount:    -amount,
		TransactionType: entities.TransactionTypeBetStake,
		TransactionMetadata: map[string]any{
			"market_id": marketID,
			"position":  string(position),
		},
		RelatedID:   &bet.ID,
		RelatedType: relatedTypePtr(entities.RelatedTypeBet),
	}
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to record stake: %w", err)
	}

	if err := uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:    bet.ID,
		MarketID: marketID,
		UserID:   userID,
		Position: position,
		Amount:   amount,
		Balance:  newBalance,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish bet placed event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"marketID": marketID,
		"position": position,
		"amount":   amount,
	}).Info("Bet placed")

	return &BetResult{Bet: bet, NewBalance: newBalance}, nil
}

// GetUserBets returns the user's bets plus their aggregate record
func (s *BettingService) GetUserBets(ctx context.Context, userID string, filter entities.BetFilter) ([]*entities.Bet, *entities.BettorStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, nil, err
	}

	stats, err := uow.BetRepository().GetUserStats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bets, stats, nil
}

func relatedTypePtr(t entities.RelatedType) *entities.RelatedType {
	return &t
}
