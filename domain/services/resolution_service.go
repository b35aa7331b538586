package services

import (
	"context"
	"fmt"

	"longshot/config"
	"longshot/domain/entities"
	"longshot/domain/events"
	"longshot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ResolutionService settles expired markets against the price oracle
type ResolutionService struct {
	uowFactory interfaces.UnitOfWorkFactory
	oracle     interfaces.PriceOracle
}

// NewResolutionService creates a new resolution service
func NewResolutionService(uowFactory interfaces.UnitOfWorkFactory, oracle interfaces.PriceOracle) *ResolutionService {
	return &ResolutionService{
		uowFactory: uowFactory,
		oracle:     oracle,
	}
}

// RunResolutionCycle settles every active market whose deadline has passed.
// Each market settles in its own transaction; one bad market never blocks
// the rest of the batch. Safe to run concurrently with itself.
func (s *ResolutionService) RunResolutionCycle(ctx context.Context) (*entities.ResolutionSummary, error) {
	cfg := config.Get()
	summary := &entities.ResolutionSummary{}

	expired, err := s.listExpired(ctx, cfg.ResolutionBatch)
	if err != nil {
		return nil, err
	}

	for _, market := range expired {
		cancelled, err := s.ResolveMarket(ctx, market.ID)
		if err != nil {
			summary.Errors++
			log.WithFields(log.Fields{
				"marketID": market.ID,
				"error":    err,
			}).Error("Failed to resolve market")
			continue
		}
		if cancelled {
			summary.Cancelled++
		} else {
			summary.Resolved++
		}
	}

	log.WithFields(log.Fields{
		"resolved":  summary.Resolved,
		"cancelled": summary.Cancelled,
		"errors":    summary.Errors,
	}).Info("Resolution cycle complete")

	return summary, nil
}

func (s *ResolutionService) listExpired(ctx context.Context, limit int) ([]*entities.Market, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	expired, err := uow.MarketRepository().GetExpiredActive(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired markets: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return expired, nil
}

// ResolveMarket settles a single market. Returns true when the market was
// cancelled rather than resolved. A market another cycle already settled is
// a no-op success.
func (s *ResolutionService) ResolveMarket(ctx context.Context, marketID int64) (bool, error) {
	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Lock the row so concurrent resolvers serialize per market.
	market, err := uow.MarketRepository().GetByIDForUpdate(ctx, marketID)
	if err != nil {
		return false, fmt.Errorf("failed to lock market: %w", err)
	}
	if market == nil {
		return false, entities.ErrMarketNotFound
	}
	if !market.IsActive() {
		// Another cycle got here first.
		return market.Status == entities.MarketStatusCancelled, nil
	}

	// Nobody bet: nothing to settle, just close the market.
	if market.TotalBettors == 0 {
		if err := s.cancelMarket(ctx, uow, market, nil); err != nil {
			return false, err
		}
		if err := uow.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return true, nil
	}

	oracleCtx, cancel := context.WithTimeout(ctx, cfg.OracleTimeout)
	price, err := s.oracle.GetCurrentPrice(oracleCtx, market.TokenAddress)
	cancel()
	if err != nil {
		return false, fmt.Errorf("oracle lookup failed: %w", err)
	}
	if price == nil {
		// No authoritative reading. Cancel and give everyone their stake back.
		log.WithFields(log.Fields{
			"marketID": market.ID,
			"token":    market.TokenSymbol,
		}).Warn("No oracle price at resolution, cancelling market")

		if err := s.refundAllBets(ctx, uow, market); err != nil {
			return false, err
		}
		if err := s.cancelMarket(ctx, uow, market, nil); err != nil {
			return false, err
		}
		if err := uow.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return true, nil
	}

	rule, err := OutcomeRuleFor(market.MarketType)
	if err != nil {
		return false, err
	}
	outcome := rule.Evaluate(market, *price)

	// One-sided market: no winning pool to distribute, stakes go back.
	if market.WinningPool(outcome) == 0 {
		if err := s.refundAllBets(ctx, uow, market); err != nil {
			return false, err
		}
		if err := s.cancelMarket(ctx, uow, market, price); err != nil {
			return false, err
		}
		if err := uow.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return true, nil
	}

	winners, err := s.settleBets(ctx, uow, market, outcome)
	if err != nil {
		return false, err
	}

	claimed, err := uow.MarketRepository().MarkResolved(ctx, market.ID, outcome, *price)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, fmt.Errorf("market %d no longer active at resolution", market.ID)
	}

	if err := uow.EventBus().Publish(events.MarketResolvedEvent{
		MarketID:  market.ID,
		Question:  market.Question,
		Status:    entities.MarketStatusResolved,
		Outcome:   &outcome,
		TotalPool: market.TotalPool,
		Winners:   winners,
	}); err != nil {
		return false, fmt.Errorf("failed to publish market resolved event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"marketID":  market.ID,
		"outcome":   outcome,
		"totalPool": market.TotalPool,
		"winners":   winners,
	}).Info("Market resolved")

	return false, nil
}

// settleBets distributes the total pool across the winning side. Winners get
// floor(amount * total_pool / winning_pool); the integer remainder stays in
// the house. Returns the winner count.
func (s *ResolutionService) settleBets(ctx context.Context, uow interfaces.UnitOfWork, market *entities.Market, outcome bool) (int, error) {
	bets, err := uow.BetRepository().ListByMarket(ctx, market.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list bets: %w", err)
	}

	winningPool := market.WinningPool(outcome)
	winners := 0

	for _, bet := range bets {
		if bet.IsSettled() {
			continue
		}

		won := bet.Backs(outcome)
		var payout int64
		if won {
			payout = bet.CalculatePayout(market.TotalPool, winningPool)
			winners++
		}

		if err := uow.BetRepository().SetOutcome(ctx, bet.ID, won, payout); err != nil {
			return 0, err
		}

		if !won || payout == 0 {
			continue
		}

		newBalance, err := uow.AccountRepository().Credit(ctx, bet.UserID, payout)
		if err != nil {
			return 0, fmt.Errorf("failed to credit payout: %w", err)
		}

		history := &entities.BalanceHistory{
			UserID:          bet.UserID,
			BalanceBefore:   newBalance - payout,
			BalanceAfter:    newBalance,
			ChangeAmount:    payout,
			TransactionType: entities.TransactionTypeBetPayout,
			TransactionMetadata: map[string]any{
				"market_id": market.ID,
				"stake":     bet.Amount,
			},
			RelatedID:   &bet.ID,
			RelatedType: relatedTypePtr(entities.RelatedTypeBet),
		}
		if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
			return 0, fmt.Errorf("failed to record payout: %w", err)
		}
	}

	return winners, nil
}

// refundAllBets returns every unsettled stake in full. Bets stay unsettled,
// the cancelled market status is what marks them void.
func (s *ResolutionService) refundAllBets(ctx context.Context, uow interfaces.UnitOfWork, market *entities.Market) error {
	bets, err := uow.BetRepository().ListByMarket(ctx, market.ID)
	if err != nil {
		return fmt.Errorf("failed to list bets: %w", err)
	}

	for _, bet := range bets {
		if bet.IsSettled() {
			continue
		}

		newBalance, err := uow.AccountRepository().Credit(ctx, bet.UserID, bet.Amount)
		if err != nil {
			return fmt.Errorf("failed to refund stake: %w", err)
		}

		history := &entities.BalanceHistory{
			UserID:          bet.UserID,
			BalanceBefore:   newBalance - bet.Amount,
			BalanceAfter:    newBalance,
			ChangeAmount:    bet.Amount,
			TransactionType: entities.TransactionTypeBetRefund,
			TransactionMetadata: map[string]any{
				"market_id": market.ID,
			},
			RelatedID:   &bet.ID,
			RelatedType: relatedTypePtr(entities.RelatedTypeBet),
		}
		if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
			return fmt.Errorf("failed to record refund: %w", err)
		}
	}

	return nil
}

// cancelMarket claims the active -> cancelled transition and emits the event
func (s *ResolutionService) cancelMarket(ctx context.Context, uow interfaces.UnitOfWork, market *entities.Market, price *float64) error {
	claimed, err := uow.MarketRepository().MarkCancelled(ctx, market.ID, price)
	if err != nil {
		return err
	}
	if !claimed {
		return fmt.Errorf("market %d no longer active at cancellation", market.ID)
	}

	return uow.EventBus().Publish(events.MarketResolvedEvent{
		MarketID:  market.ID,
		Question:  market.Question,
		Status:    entities.MarketStatusCancelled,
		Outcome:   nil,
		TotalPool: market.TotalPool,
	})
}
