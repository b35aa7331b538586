package repository

import (
	"context"
	"fmt"
	"time"

	"longshot/database"
	"longshot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// NewAccountRepositoryWithTx creates a new account repository bound to a transaction
func NewAccountRepositoryWithTx(tx Queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByUserID retrieves an account by user ID
func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*entities.Account, error) {
	query := `
		SELECT user_id, balance, total_wagered, last_claim_at, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var account entities.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.TotalWagered,
		&account.LastClaimAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %s: %w", userID, err)
	}

	return &account, nil
}

// Create inserts an account with the initial balance. ON CONFLICT DO NOTHING
// keeps concurrent first touches from double-granting; the surviving row is
// re-read either way. The bool reports whether this call did the insert.
func (r *AccountRepository) Create(ctx context.Context, userID string, initialBalance int64) (*entities.Account, bool, error) {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, query, userID, initialBalance)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account for user %s: %w", userID, err)
	}
	inserted := tag.RowsAffected() == 1

	account, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if account == nil {
		return nil, false, fmt.Errorf("account for user %s missing after insert", userID)
	}

	return account, inserted, nil
}

// DebitStake deducts a stake and bumps total_wagered in a single conditional
// statement. The balance guard sits in the WHERE clause, so a concurrent
// debit can never drive the balance negative.
func (r *AccountRepository) DebitStake(ctx context.Context, userID string, amount int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $2,
		    total_wagered = total_wagered + $2,
		    updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, userID, amount).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, entities.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit %d from user %s: %w", amount, userID, err)
	}

	return newBalance, nil
}

// Credit adds to the balance atomically
func (r *AccountRepository) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, userID, amount).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("account for user %s not found", userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit %d to user %s: %w", amount, userID, err)
	}

	return newBalance, nil
}

// ClaimDaily grants the daily amount iff the rolling window has elapsed.
// The window guard runs inside the UPDATE, so two concurrent claims inside
// the same window can never both succeed.
func (r *AccountRepository) ClaimDaily(ctx context.Context, userID string, amount int64, window time.Duration) (*entities.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    last_claim_at = NOW(),
		    updated_at = NOW()
		WHERE user_id = $1
		  AND (last_claim_at IS NULL OR last_claim_at <= NOW() - $3::interval)
		RETURNING user_id, balance, total_wagered, last_claim_at, created_at, updated_at
	`

	interval := fmt.Sprintf("%d seconds", int64(window.Seconds()))

	var account entities.Account
	err := r.q.QueryRow(ctx, query, userID, amount, interval).Scan(
		&account.UserID,
		&account.Balance,
		&account.TotalWagered,
		&account.LastClaimAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim daily points for user %s: %w", userID, err)
	}

	return &account, nil
}
