package repository

import (
	"context"
	"errors"
	"fmt"

	"longshot/database"
	"longshot/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// NewBetRepositoryWithTx creates a new bet repository bound to a transaction
func NewBetRepositoryWithTx(tx Queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `id, market_id, user_id, position, amount, payout, is_winner, created_at`

func scanBet(row pgx.Row) (*entities.Bet, error) {
	var b entities.Bet
	err := row.Scan(
		&b.ID,
		&b.MarketID,
		&b.UserID,
		&b.Position,
		&b.Amount,
		&b.Payout,
		&b.IsWinner,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBets(rows pgx.Rows) ([]*entities.Bet, error) {
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// Create inserts a new bet. The unique (market_id, user_id) index is the
// final backstop against a double bet racing past the service-level check.
func (r *BetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	query := `
		INSERT INTO bets (market_id, user_id, position, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.MarketID,
		bet.UserID,
		bet.Position,
		bet.Amount,
	).Scan(&bet.ID, &bet.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return entities.ErrDuplicateBet
	}
	if err != nil {
		return fmt.Errorf("failed to create bet on market %d for user %s: %w", bet.MarketID, bet.UserID, err)
	}

	return nil
}

// GetByMarketAndUser returns the user's bet on a market, or nil
func (r *BetRepository) GetByMarketAndUser(ctx context.Context, marketID int64, userID string) (*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE market_id = $1 AND user_id = $2`

	bet, err := scanBet(r.q.QueryRow(ctx, query, marketID, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet on market %d for user %s: %w", marketID, userID, err)
	}

	return bet, nil
}

// ListByMarket returns all bets on a market in placement order
func (r *BetRepository) ListByMarket(ctx context.Context, marketID int64) ([]*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE market_id = $1 ORDER BY id ASC`

	rows, err := r.q.Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets on market %d: %w", marketID, err)
	}

	return scanBets(rows)
}

// ListByUser returns the user's bets matching the filter, newest first
func (r *BetRepository) ListByUser(ctx context.Context, userID string, filter entities.BetFilter) ([]*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1`
	args := []interface{}{userID}
	argNum := 2

	if filter.Settled != nil {
		if *filter.Settled {
			query += " AND is_winner IS NOT NULL"
		} else {
			query += " AND is_winner IS NULL"
		}
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for user %s: %w", userID, err)
	}

	return scanBets(rows)
}

// GetForMarkets returns the user's bets keyed by market ID
func (r *BetRepository) GetForMarkets(ctx context.Context, userID string, marketIDs []int64) (map[int64]*entities.Bet, error) {
	if len(marketIDs) == 0 {
		return map[int64]*entities.Bet{}, nil
	}

	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 AND market_id = ANY($2)`

	rows, err := r.q.Query(ctx, query, userID, marketIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for user %s: %w", userID, err)
	}

	bets, err := scanBets(rows)
	if err != nil {
		return nil, err
	}

	byMarket := make(map[int64]*entities.Bet, len(bets))
	for _, b := range bets {
		byMarket[b.MarketID] = b
	}
	return byMarket, nil
}

// SetOutcome marks a bet's settlement. The is_winner IS NULL guard keeps a
// replayed settlement from paying a bet twice.
func (r *BetRepository) SetOutcome(ctx context.Context, betID int64, isWinner bool, payout int64) error {
	query := `
		UPDATE bets
		SET is_winner = $2, payout = $3
		WHERE id = $1 AND is_winner IS NULL
	`

	tag, err := r.q.Exec(ctx, query, betID, isWinner, payout)
	if err != nil {
		return fmt.Errorf("failed to set outcome on bet %d: %w", betID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet %d already settled", betID)
	}

	return nil
}

// GetUserStats aggregates the user's betting record
func (r *BetRepository) GetUserStats(ctx context.Context, userID string) (*entities.BettorStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE is_winner = true),
			COUNT(*) FILTER (WHERE is_winner = false),
			COUNT(*) FILTER (WHERE is_winner IS NULL),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(payout) FILTER (WHERE is_winner = true), 0)
		FROM bets
		WHERE user_id = $1
	`

	var stats entities.BettorStats
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&stats.Wins,
		&stats.Losses,
		&stats.Pending,
		&stats.TotalWagered,
		&stats.TotalWon,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for user %s: %w", userID, err)
	}

	return &stats, nil
}
