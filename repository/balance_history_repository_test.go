package repository

import (
	"context"
	"testing"

	"longshot/domain/entities"
	"longshot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceHistoryRepository_RecordAndList(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()

	accountRepo := NewAccountRepository(testDB.DB)
	_, _, err := accountRepo.Create(ctx, "alice", 500)
	require.NoError(t, err)

	first := testutil.CreateTestBalanceHistory("alice", entities.TransactionTypeBetStake)
	require.NoError(t, repo.Record(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &entities.BalanceHistory{
		UserID:          "alice",
		BalanceBefore:   400,
		BalanceAfter:    650,
		ChangeAmount:    250,
		TransactionType: entities.TransactionTypeBetPayout,
		TransactionMetadata: map[string]any{
			"market_id": float64(7),
		},
	}
	require.NoError(t, repo.Record(ctx, second))

	history, err := repo.ListByUser(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first.
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, entities.TransactionTypeBetPayout, history[0].TransactionType)
	assert.True(t, history[0].IsCredit())
	assert.Equal(t, float64(7), history[0].TransactionMetadata["market_id"])

	assert.Equal(t, entities.TransactionTypeBetStake, history[1].TransactionType)
	assert.False(t, history[1].IsCredit())

	for _, entry := range history {
		assert.NoError(t, entry.Validate())
	}
}

func TestBalanceHistoryRepository_RejectsInconsistentEntry(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()

	accountRepo := NewAccountRepository(testDB.DB)
	_, _, err := accountRepo.Create(ctx, "alice", 500)
	require.NoError(t, err)

	entry := &entities.BalanceHistory{
		UserID:          "alice",
		BalanceBefore:   500,
		BalanceAfter:    700, // before + change != after
		ChangeAmount:    100,
		TransactionType: entities.TransactionTypeBetPayout,
	}

	err = repo.Record(ctx, entry)
	assert.Error(t, err)
}

func TestBalanceHistoryRepository_ListHonorsLimit(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()

	accountRepo := NewAccountRepository(testDB.DB)
	_, _, err := accountRepo.Create(ctx, "alice", 500)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, testutil.CreateTestBalanceHistory("alice", entities.TransactionTypeBetStake)))
	}

	history, err := repo.ListByUser(ctx, "alice", 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}
