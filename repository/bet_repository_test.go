package repository

import (
	"context"
	"testing"

	"longshot/domain/entities"
	"longshot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// betTestFixture creates the accounts and market that bet rows reference
func betTestFixture(t *testing.T, testDB *testutil.TestDatabase, users ...string) *entities.Market {
	ctx := context.Background()

	accountRepo := NewAccountRepository(testDB.DB)
	for _, user := range users {
		_, _, err := accountRepo.Create(ctx, user, 10000)
		require.NoError(t, err)
	}

	marketRepo := NewMarketRepository(testDB.DB)
	market := testutil.CreateTestMarket("Addr1", "WIF")
	require.NoError(t, marketRepo.Create(ctx, market))

	return market
}

func TestBetRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	market := betTestFixture(t, testDB, "alice")

	bet := testutil.CreateTestBet(market.ID, "alice", entities.BetPositionYes, 100)
	err := repo.Create(ctx, bet)
	require.NoError(t, err)

	assert.NotZero(t, bet.ID)
	assert.False(t, bet.CreatedAt.IsZero())

	got, err := repo.GetByMarketAndUser(ctx, market.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.BetPositionYes, got.Position)
	assert.Equal(t, int64(100), got.Amount)
	assert.Nil(t, got.Payout)
	assert.Nil(t, got.IsWinner)
	assert.False(t, got.IsSettled())
}

func TestBetRepository_Create_DuplicateViolation(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	market := betTestFixture(t, testDB, "alice")

	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(market.ID, "alice", entities.BetPositionYes, 100)))

	// Same user, same market: the unique index rejects it regardless of side.
	err := repo.Create(ctx, testutil.CreateTestBet(market.ID, "alice", entities.BetPositionNo, 200))
	assert.ErrorIs(t, err, entities.ErrDuplicateBet)
}

func TestBetRepository_ListByMarket(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	market := betTestFixture(t, testDB, "alice", "bob", "carol")

	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(market.ID, "alice", entities.BetPositionYes, 100)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(market.ID, "bob", entities.BetPositionNo, 200)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(market.ID, "carol", entities.BetPositionYes, 300)))

	bets, err := repo.ListByMarket(ctx, market.ID)
	require.NoError(t, err)
	require.Len(t, bets, 3)

	// Placement order.
	assert.Equal(t, "alice", bets[0].UserID)
	assert.Equal(t, "bob", bets[1].UserID)
	assert.Equal(t, "carol", bets[2].UserID)
}

func TestBetRepository_ListByUser_SettledFilter(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	accountRepo := NewAccountRepository(testDB.DB)
	_, _, err := accountRepo.Create(ctx, "alice", 10000)
	require.NoError(t, err)

	marketRepo := NewMarketRepository(testDB.DB)
	first := testutil.CreateTestMarket("Addr1", "WIF")
	require.NoError(t, marketRepo.Create(ctx, first))
	second := testutil.CreateTestMarket("Addr2", "BONK")
	second.Fingerprint = entities.MarketFingerprint("Addr2", entities.MarketTypePriceAbove)
	require.NoError(t, marketRepo.Create(ctx, second))

	settledBet := testutil.CreateTestBet(first.ID, "alice", entities.BetPositionYes, 100)
	require.NoError(t, repo.Create(ctx, settledBet))
	require.NoError(t, repo.SetOutcome(ctx, settledBet.ID, true, 250))

	pendingBet := testutil.CreateTestBet(second.ID, "alice", entities.BetPositionNo, 200)
	require.NoError(t, repo.Create(ctx, pendingBet))

	t.Run("all bets newest first", func(t *testing.T) {
		bets, err := repo.ListByUser(ctx, "alice", entities.BetFilter{})
		require.NoError(t, err)
		require.Len(t, bets, 2)
		assert.Equal(t, pendingBet.ID, bets[0].ID)
	})

	t.Run("settled only", func(t *testing.T) {
		settled := true
		bets, err := repo.ListByUser(ctx, "alice", entities.BetFilter{Settled: &settled})
		require.NoError(t, err)
		require.Len(t, bets, 1)
		assert.Equal(t, settledBet.ID, bets[0].ID)
		assert.True(t, bets[0].Won())
	})

	t.Run("pending only", func(t *testing.T) {
		settled := false
		bets, err := repo.ListByUser(ctx, "alice", entities.BetFilter{Settled: &settled})
		require.NoError(t, err)
		require.Len(t, bets, 1)
		assert.Equal(t, pendingBet.ID, bets[0].ID)
	})
}

func TestBetRepository_GetForMarkets(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	accountRepo := NewAccountRepository(testDB.DB)
	_, _, err := accountRepo.Create(ctx, "alice", 10000)
	require.NoError(t, err)

	marketRepo := NewMarketRepository(testDB.DB)
	first := testutil.CreateTestMarket("Addr1", "WIF")
	require.NoError(t, marketRepo.Create(ctx, first))
	second := testutil.CreateTestMarket("Addr2", "BONK")
	second.Fingerprint = entities.MarketFingerprint("Addr2", entities.MarketTypePriceAbove)
	require.NoError(t, marketRepo.Create(ctx, second))

	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(first.ID, "alice", entities.BetPositionYes, 100)))

	byMarket, err := repo.GetForMarkets(ctx, "alice", []int64{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, byMarket, 1)
	assert.Equal(t, int64(100), byMarket[first.ID].Amount)

	empty, err := repo.GetForMarkets(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBetRepository_SetOutcome_Once(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	market := betTestFixture(t, testDB, "alice")

	bet := testutil.CreateTestBet(market.ID, "alice", entities.BetPositionYes, 100)
	require.NoError(t, repo.Create(ctx, bet))

	require.NoError(t, repo.SetOutcome(ctx, bet.ID, true, 250))

	got, err := repo.GetByMarketAndUser(ctx, market.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, got.IsWinner)
	assert.True(t, *got.IsWinner)
	require.NotNil(t, got.Payout)
	assert.Equal(t, int64(250), *got.Payout)

	// A replayed settlement must not pay twice.
	err = repo.SetOutcome(ctx, bet.ID, true, 250)
	assert.Error(t, err)
}

func TestBetRepository_GetUserStats(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	accountRepo := NewAccountRepository(testDB.DB)
	_, _, err := accountRepo.Create(ctx, "alice", 10000)
	require.NoError(t, err)

	marketRepo := NewMarketRepository(testDB.DB)
	symbols := []string{"AAA", "BBB", "CCC"}
	var markets []*entities.Market
	for _, symbol := range symbols {
		market := testutil.CreateTestMarket(symbol+"Addr", symbol)
		market.Fingerprint = entities.MarketFingerprint(symbol+"Addr", entities.MarketTypePriceAbove)
		require.NoError(t, marketRepo.Create(ctx, market))
		markets = append(markets, market)
	}

	win := testutil.CreateTestBet(markets[0].ID, "alice", entities.BetPositionYes, 100)
	require.NoError(t, repo.Create(ctx, win))
	require.NoError(t, repo.SetOutcome(ctx, win.ID, true, 300))

	loss := testutil.CreateTestBet(markets[1].ID, "alice", entities.BetPositionNo, 200)
	require.NoError(t, repo.Create(ctx, loss))
	require.NoError(t, repo.SetOutcome(ctx, loss.ID, false, 0))

	pending := testutil.CreateTestBet(markets[2].ID, "alice", entities.BetPositionYes, 50)
	require.NoError(t, repo.Create(ctx, pending))

	stats, err := repo.GetUserStats(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, int64(350), stats.TotalWagered)
	assert.Equal(t, int64(300), stats.TotalWon)
	assert.Equal(t, int64(-50), stats.NetPnL())

	empty, err := repo.GetUserStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.Wins)
	assert.Zero(t, empty.TotalWagered)
}
