package services

import (
	"context"
	"os"
	"testing"
	"time"

	"longshot/config"
	"longshot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	config.SetTestConfig(config.NewTestConfig())
	os.Exit(m.Run())
}

func activeMarket(id int64) *entities.Market {
	return &entities.Market{
		ID:              id,
		Question:        "Will WIF trade above $3.00 in 24h?",
		TokenAddress:    "So11111111111111111111111111111111111111112",
		TokenSymbol:     "WIF",
		MarketType:      entities.MarketTypePriceAbove,
		Status:          entities.MarketStatusActive,
		ThresholdPrice:  3.0,
		PriceAtCreation: 2.7,
		ResolveAt:       time.Now().UTC().Add(time.Hour),
	}
}

func newBettingMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockAccountRepository, *MockMarketRepository, *MockBetRepository, *MockBalanceHistoryRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockMarketRepo := new(MockMarketRepository)
	mockBetRepo := new(MockBetRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockMarketRepo, mockBetRepo, mockHistoryRepo, nil)
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockFactory, mockAccountRepo, mockMarketRepo, mockBetRepo, mockHistoryRepo
}

func TestBettingService_PlaceBet_Success(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockMarketRepo, mockBetRepo, mockHistoryRepo := newBettingMocks()

	service := NewBettingService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockMarketRepo.On("GetByID", ctx, int64(7)).Return(activeMarket(7), nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(&entities.Account{
		UserID:  "user-1",
		Balance: 500,
	}, nil)
	mockBetRepo.On("GetByMarketAndUser", ctx, int64(7), "user-1").Return(nil, nil)
	mockAccountRepo.On("DebitStake", ctx, "user-1", int64(100)).Return(int64(400), nil)
	mockBetRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bet) bool {
		return b.MarketID == 7 && b.UserID == "user-1" && b.Position == entities.BetPositionYes && b.Amount == 100
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Bet).ID = 42
	})
	mockMarketRepo.On("RecordStake", ctx, int64(7), entities.BetPositionYes, int64(100)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.UserID == "user-1" &&
			h.BalanceBefore == 500 &&
			h.BalanceAfter == 400 &&
			h.ChangeAmount == -100 &&
			h.TransactionType == entities.TransactionTypeBetStake
	})).Return(nil)

	result, err := service.PlaceBet(ctx, "user-1", 7, entities.BetPositionYes, 100)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), result.Bet.ID)
	assert.Equal(t, int64(400), result.NewBalance)

	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockMarketRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestBettingService_PlaceBet_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, _, _, _ := newBettingMocks()

	service := NewBettingService(mockFactory)

	for _, amount := range []int64{0, -50, 9, 5001} {
		_, err := service.PlaceBet(ctx, "user-1", 7, entities.BetPositionYes, amount)
		assert.ErrorIs(t, err, entities.ErrInvalidInput, "amount %d", amount)
	}

	mockFactory.AssertNotCalled(t, "Create")
}

func TestBettingService_PlaceBet_InvalidPosition(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, _, _, _ := newBettingMocks()

	service := NewBettingService(mockFactory)

	_, err := service.PlaceBet(ctx, "user-1", 7, entities.BetPosition("maybe"), 100)
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestBettingService_PlaceBet_MarketNotFound(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockMarketRepo, _, _ := newBettingMocks()

	service := NewBettingService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockMarketRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := service.PlaceBet(ctx, "user-1", 99, entities.BetPositionNo, 100)

	assert.ErrorIs(t, err, entities.ErrMarketNotFound)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBettingService_PlaceBet_MarketExpired(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockMarketRepo, _, _ := newBettingMocks()

	service := NewBettingService(mockFactory)

	expired := activeMarket(7)
	expired.ResolveAt = time.Now().UTC().Add(-time.Minute)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockMarketRepo.On("GetByID", ctx, int64(7)).Return(expired, nil)

	_, err := service.PlaceBet(ctx, "user-1", 7, entities.BetPositionYes, 100)

	assert.ErrorIs(t, err, entities.ErrMarketExpired)
}

func TestBettingService_PlaceBet_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockMarketRepo, mockBetRepo, _ := newBettingMocks()

	service := NewBettingService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockMarketRepo.On("GetByID", ctx, int64(7)).Return(activeMarket(7), nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(&entities.Account{
		UserID:  "user-1",
		Balance: 30,
	}, nil)
	mockBetRepo.On("GetByMarketAndUser", ctx, int64(7), "user-1").Return(nil, nil)
	mockAccountRepo.On("DebitStake", ctx, "user-1", int64(100)).Return(int64(0), entities.ErrInsufficientFunds)

	_, err := service.PlaceBet(ctx, "user-1", 7, entities.BetPositionYes, 100)

	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	mockUoW.AssertNotCalled(t, "Commit")
	mockBetRepo.AssertNotCalled(t, "Create")
}

func TestBettingService_PlaceBet_DuplicateBet(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockMarketRepo, mockBetRepo, _ := newBettingMocks()

	service := NewBettingService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockMarketRepo.On("GetByID", ctx, int64(7)).Return(activeMarket(7), nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(&entities.Account{
		UserID:  "user-1",
		Balance: 500,
	}, nil)
	mockBetRepo.On("GetByMarketAndUser", ctx, int64(7), "user-1").Return(&entities.Bet{
		ID:       41,
		MarketID: 7,
		UserID:   "user-1",
	}, nil)

	_, err := service.PlaceBet(ctx, "user-1", 7, entities.BetPositionYes, 100)

	assert.ErrorIs(t, err, entities.ErrDuplicateBet)
	mockAccountRepo.AssertNotCalled(t, "DebitStake")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBettingService_PlaceBet_DuplicateRace(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockMarketRepo, mockBetRepo, _ := newBettingMocks()

	service := NewBettingService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockMarketRepo.On("GetByID", ctx, int64(7)).Return(activeMarket(7), nil)
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(&entities.Account{
		UserID:  "user-1",
		Balance: 500,
	}, nil)
	// Pre-check misses the concurrent bet; the unique index catches it.
	mockBetRepo.On("GetByMarketAndUser", ctx, int64(7), "user-1").Return(nil, nil)
	mockAccountRepo.On("DebitStake", ctx, "user-1", int64(100)).Return(int64(400), nil)
	mockBetRepo.On("Create", ctx, mock.AnythingOfType("*entities.Bet")).Return(entities.ErrDuplicateBet)

	_, err := service.PlaceBet(ctx, "user-1", 7, entities.BetPositionYes, 100)

	assert.ErrorIs(t, err, entities.ErrDuplicateBet)
	// The debit rolls back with the transaction.
	mockUoW.AssertNotCalled(t, "Commit")
	mockUoW.AssertCalled(t, "Rollback")
}

func TestBettingService_GetUserBets(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, _, mockBetRepo, _ := newBettingMocks()

	service := NewBettingService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	filter := entities.BetFilter{Limit: 20}
	mockBetRepo.On("ListByUser", ctx, "user-1", filter).Return([]*entities.Bet{
		{ID: 1, MarketID: 7, UserID: "user-1", Amount: 100},
	}, nil)
	mockBetRepo.On("GetUserStats", ctx, "user-1").Return(&entities.BettorStats{
		Wins:         3,
		Losses:       2,
		Pending:      1,
		TotalWagered: 600,
		TotalWon:     900,
	}, nil)

	bets, stats, err := service.GetUserBets(ctx, "user-1", filter)

	assert.NoError(t, err)
	assert.Len(t, bets, 1)
	assert.Equal(t, int64(300), stats.NetPnL())
}
