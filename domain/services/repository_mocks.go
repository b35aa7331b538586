package services

import (
	"context"
	"time"

	"longshot/domain/entities"
	"longshot/domain/events"
	"longshot/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID string) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, userID string, initialBalance int64) (*entities.Account, bool, error) {
	args := m.Called(ctx, userID, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) DebitStake(ctx context.Context, userID string, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ClaimDaily(ctx context.Context, userID string, amount int64, window time.Duration) (*entities.Account, error) {
	args := m.Called(ctx, userID, amount, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

// MockMarketRepository is a mock implementation of MarketRepository
type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) Create(ctx context.Context, market *entities.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

func (m *MockMarketRepository) GetByID(ctx context.Context, id int64) (*entities.Market, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Market), args.Error(1)
}

func (m *MockMarketRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Market, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Market), args.Error(1)
}

func (m *MockMarketRepository) List(ctx context.Context, filter entities.MarketFilter) ([]*entities.Market, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Market), args.Error(1)
}

func (m *MockMarketRepository) RecordStake(ctx context.Context, marketID int64, position entities.BetPosition, amount int64) error {
	args := m.Called(ctx, marketID, position, amount)
	return args.Error(0)
}

func (m *MockMarketRepository) GetExpiredActive(ctx context.Context, limit int) ([]*entities.Market, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Market), args.Error(1)
}

func (m *MockMarketRepository) MarkResolved(ctx context.Context, id int64, outcome bool, priceAtResolution float64) (bool, error) {
	args := m.Called(ctx, id, outcome, priceAtResolution)
	return args.Bool(0), args.Error(1)
}

func (m *MockMarketRepository) MarkCancelled(ctx context.Context, id int64, priceAtResolution *float64) (bool, error) {
	args := m.Called(ctx, id, priceAtResolution)
	return args.Bool(0), args.Error(1)
}

func (m *MockMarketRepository) ActiveOrRecentFingerprintExists(ctx context.Context, fingerprint string, createdAfter time.Time) (bool, error) {
	args := m.Called(ctx, fingerprint, createdAfter)
	return args.Bool(0), args.Error(1)
}

func (m *MockMarketRepository) Search(ctx context.Context, query string, limit int) ([]*entities.Market, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Market), args.Error(1)
}

func (m *MockMarketRepository) UpdateNarrative(ctx context.Context, id int64, narrative string) error {
	args := m.Called(ctx, id, narrative)
	return args.Error(0)
}

func (m *MockMarketRepository) ListUntagged(ctx context.Context, limit int) ([]*entities.Market, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Market), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByMarketAndUser(ctx context.Context, marketID int64, userID string) (*entities.Bet, error) {
	args := m.Called(ctx, marketID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) ListByMarket(ctx context.Context, marketID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) ListByUser(ctx context.Context, userID string, filter entities.BetFilter) ([]*entities.Bet, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetForMarkets(ctx context.Context, userID string, marketIDs []int64) (map[int64]*entities.Bet, error) {
	args := m.Called(ctx, userID, marketIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) SetOutcome(ctx context.Context, betID int64, isWinner bool, payout int64) error {
	args := m.Called(ctx, betID, isWinner, payout)
	return args.Error(0)
}

func (m *MockBetRepository) GetUserStats(ctx context.Context, userID string) (*entities.BettorStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BettorStats), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockPriceOracle is a mock implementation of PriceOracle
type MockPriceOracle struct {
	mock.Mock
}

func (m *MockPriceOracle) GetCurrentPrice(ctx context.Context, tokenAddress string) (*float64, error) {
	args := m.Called(ctx, tokenAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

// MockSignalFeed is a mock implementation of SignalFeed
type MockSignalFeed struct {
	mock.Mock
}

func (m *MockSignalFeed) ListRecentSignals(ctx context.Context, since time.Time, limit int) ([]*entities.TokenSignal, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TokenSignal), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories; Begin/Commit/Rollback carry expectations.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo        interfaces.AccountRepository
	marketRepo         interfaces.MarketRepository
	betRepo            interfaces.BetRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventBus           interfaces.EventPublisher
}

// SetRepositories wires the mock repositories this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	accountRepo interfaces.AccountRepository,
	marketRepo interfaces.MarketRepository,
	betRepo interfaces.BetRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventBus interfaces.EventPublisher,
) {
	m.accountRepo = accountRepo
	m.marketRepo = marketRepo
	m.betRepo = betRepo
	m.balanceHistoryRepo = balanceHistoryRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) MarketRepository() interfaces.MarketRepository {
	return m.marketRepo
}

func (m *MockUnitOfWork) BetRepository() interfaces.BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher {
	if m.eventBus == nil {
		return &noopPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	args := m.Called()
	return args.Get(0).(interfaces.UnitOfWork)
}

// noopPublisher swallows events for tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(event events.Event) error { return nil }
