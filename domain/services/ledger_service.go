package services

import (
	"context"
	"fmt"
	"time"

	"longshot/config"
	"longshot/domain/entities"
	"longshot/domain/events"
	"longshot/domain/interfaces"
)

// LedgerService manages points accounts and the daily claim
type LedgerService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory interfaces.UnitOfWorkFactory) *LedgerService {
	return &LedgerService{uowFactory: uowFactory}
}

// GetOrCreateAccount returns the user's account, provisioning it with the
// starting balance on first touch. Idempotent under concurrent calls.
func (s *LedgerService) GetOrCreateAccount(ctx context.Context, userID string) (*entities.Account, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", entities.ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, _, err := getOrCreateAccount(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// getOrCreateAccount provisions an account inside the caller's unit of work.
// Returns whether this call created the account.
func getOrCreateAccount(ctx context.Context, uow interfaces.UnitOfWork, userID string) (*entities.Account, bool, error) {
	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, false, nil
	}

	cfg := config.Get()
	account, inserted, err := uow.AccountRepository().Create(ctx, userID, cfg.StartingBalance)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account: %w", err)
	}

	// A lost insert race returns the surviving row; only the winner journals
	// the initial grant.
	if inserted {
		history := &entities.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   0,
			BalanceAfter:    cfg.StartingBalance,
			ChangeAmount:    cfg.StartingBalance,
			TransactionType: entities.TransactionTypeInitial,
		}
		if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
			return nil, false, fmt.Errorf("failed to record initial balance: %w", err)
		}
	}

	return account, inserted, nil
}

// ClaimDaily grants the daily points allowance once per rolling window.
// A claim inside the window returns AlreadyClaimedError with the remaining wait.
func (s *LedgerService) ClaimDaily(ctx context.Context, userID string) (*entities.Account, int64, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("%w: user id is required", entities.ErrInvalidInput)
	}

	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	before, _, err := getOrCreateAccount(ctx, uow, userID)
	if err != nil {
		return nil, 0, err
	}

	account, err := uow.AccountRepository().ClaimDaily(ctx, userID, cfg.DailyClaimAmount, cfg.DailyClaimWindow)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to claim daily points: %w", err)
	}
	if account == nil {
		// Window not elapsed. Compute the remaining wait from the row we read.
		return nil, 0, &entities.AlreadyClaimedError{
			RetryAfter: before.NextClaimIn(time.Now().UTC(), cfg.DailyClaimWindow),
		}
	}

	history := &entities.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   account.Balance - cfg.DailyClaimAmount,
		BalanceAfter:    account.Balance,
		ChangeAmount:    cfg.DailyClaimAmount,
		TransactionType: entities.TransactionTypeDailyClaim,
	}
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return nil, 0, fmt.Errorf("failed to record daily claim: %w", err)
	}

	if err := uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: entities.TransactionTypeDailyClaim,
	}); err != nil {
		return nil, 0, fmt.Errorf("failed to publish balance change event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, cfg.DailyClaimAmount, nil
}

// GetBalanceHistory returns the user's most recent ledger journal entries
func (s *LedgerService) GetBalanceHistory(ctx context.Context, userID string, limit int) ([]*entities.BalanceHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return history, nil
}
