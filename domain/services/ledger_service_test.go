package services

import (
	"context"
	"testing"
	"time"

	"longshot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newLedgerMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockAccountRepository, *MockBalanceHistoryRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockHistoryRepo, nil)
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockFactory, mockAccountRepo, mockHistoryRepo
}

func TestLedgerService_GetOrCreateAccount_Existing(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockHistoryRepo := newLedgerMocks()

	service := NewLedgerService(mockFactory)

	existing := &entities.Account{UserID: "user-1", Balance: 2500, TotalWagered: 4000}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)

	account, err := service.GetOrCreateAccount(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, existing, account)
	mockAccountRepo.AssertNotCalled(t, "Create")
	mockHistoryRepo.AssertNotCalled(t, "Record")
}

func TestLedgerService_GetOrCreateAccount_New(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockHistoryRepo := newLedgerMocks()

	service := NewLedgerService(mockFactory)

	created := &entities.Account{UserID: "user-2", Balance: 500}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-2").Return(nil, nil)
	mockAccountRepo.On("Create", ctx, "user-2", int64(500)).Return(created, true, nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.UserID == "user-2" &&
			h.BalanceBefore == 0 &&
			h.BalanceAfter == 500 &&
			h.TransactionType == entities.TransactionTypeInitial
	})).Return(nil)

	account, err := service.GetOrCreateAccount(ctx, "user-2")

	assert.NoError(t, err)
	assert.Equal(t, int64(500), account.Balance)
	mockHistoryRepo.AssertExpectations(t)
}

func TestLedgerService_GetOrCreateAccount_LostInsertRace(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockHistoryRepo := newLedgerMocks()

	service := NewLedgerService(mockFactory)

	// Another transaction won the insert between our read and our create.
	// The surviving row still looks pristine, but only the winner journals
	// the initial grant.
	surviving := &entities.Account{UserID: "user-3", Balance: 500}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-3").Return(nil, nil)
	mockAccountRepo.On("Create", ctx, "user-3", int64(500)).Return(surviving, false, nil)

	account, err := service.GetOrCreateAccount(ctx, "user-3")

	assert.NoError(t, err)
	assert.Equal(t, int64(500), account.Balance)
	mockHistoryRepo.AssertNotCalled(t, "Record")
}

func TestLedgerService_ClaimDaily_Success(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockHistoryRepo := newLedgerMocks()

	service := NewLedgerService(mockFactory)

	now := time.Now().UTC()
	before := &entities.Account{UserID: "user-1", Balance: 400}
	after := &entities.Account{UserID: "user-1", Balance: 500, LastClaimAt: &now}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(before, nil)
	mockAccountRepo.On("ClaimDaily", ctx, "user-1", int64(100), 24*time.Hour).Return(after, nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.ChangeAmount == 100 &&
			h.BalanceBefore == 400 &&
			h.BalanceAfter == 500 &&
			h.TransactionType == entities.TransactionTypeDailyClaim
	})).Return(nil)

	account, granted, err := service.ClaimDaily(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(100), granted)
	assert.Equal(t, int64(500), account.Balance)
}

func TestLedgerService_ClaimDaily_WindowNotElapsed(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockHistoryRepo := newLedgerMocks()

	service := NewLedgerService(mockFactory)

	lastClaim := time.Now().UTC().Add(-6 * time.Hour)
	before := &entities.Account{UserID: "user-1", Balance: 500, LastClaimAt: &lastClaim}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(before, nil)
	mockAccountRepo.On("ClaimDaily", ctx, "user-1", int64(100), 24*time.Hour).Return(nil, nil)

	_, _, err := service.ClaimDaily(ctx, "user-1")

	assert.ErrorIs(t, err, entities.ErrAlreadyClaimed)

	var claimErr *entities.AlreadyClaimedError
	assert.ErrorAs(t, err, &claimErr)
	assert.InDelta(t, (18 * time.Hour).Seconds(), claimErr.RetryAfter.Seconds(), 60)

	mockHistoryRepo.AssertNotCalled(t, "Record")
	mockUoW.AssertNotCalled(t, "Commit")
}
