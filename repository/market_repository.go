package repository

import (
	"context"
	"fmt"
	"time"

	"longshot/database"
	"longshot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// MarketRepository implements the MarketRepository interface
type MarketRepository struct {
	q Queryable
}

// NewMarketRepository creates a new market repository
func NewMarketRepository(db *database.DB) *MarketRepository {
	return &MarketRepository{q: db.Pool}
}

// NewMarketRepositoryWithTx creates a new market repository bound to a transaction
func NewMarketRepositoryWithTx(tx Queryable) *MarketRepository {
	return &MarketRepository{q: tx}
}

const marketColumns = `
	id, question, token_address, token_symbol, token_name, narrative,
	market_type, status, outcome, threshold_price, change_percent,
	price_at_creation, price_at_resolution, yes_pool, no_pool, total_pool,
	total_bettors, fingerprint, resolve_at, resolved_at, created_at
`

func scanMarket(row pgx.Row) (*entities.Market, error) {
	var m entities.Market
	err := row.Scan(
		&m.ID,
		&m.Question,
		&m.TokenAddress,
		&m.TokenSymbol,
		&m.TokenName,
		&m.Narrative,
		&m.MarketType,
		&m.Status,
		&m.Outcome,
		&m.ThresholdPrice,
		&m.ChangePercent,
		&m.PriceAtCreation,
		&m.PriceAtResolution,
		&m.YesPool,
		&m.NoPool,
		&m.TotalPool,
		&m.TotalBettors,
		&m.Fingerprint,
		&m.ResolveAt,
		&m.ResolvedAt,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMarkets(rows pgx.Rows) ([]*entities.Market, error) {
	defer rows.Close()

	var markets []*entities.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		markets = append(markets, m)
	}
	return markets, rows.Err()
}

// Create inserts a new market and populates its generated fields
func (r *MarketRepository) Create(ctx context.Context, market *entities.Market) error {
	query := `
		INSERT INTO markets (
			question, token_address, token_symbol, token_name, narrative,
			market_type, status, threshold_price, change_percent,
			price_at_creation, fingerprint, resolve_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, status, yes_pool, no_pool, total_pool, total_bettors, created_at
	`

	err := r.q.QueryRow(ctx, query,
		market.Question,
		market.TokenAddress,
		market.TokenSymbol,
		market.TokenName,
		market.Narrative,
		market.MarketType,
		entities.MarketStatusActive,
		market.ThresholdPrice,
		market.ChangePercent,
		market.PriceAtCreation,
		market.Fingerprint,
		market.ResolveAt,
	).Scan(
		&market.ID,
		&market.Status,
		&market.YesPool,
		&market.NoPool,
		&market.TotalPool,
		&market.TotalBettors,
		&market.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create market for token %s: %w", market.TokenSymbol, err)
	}

	return nil
}

// GetByID retrieves a market by ID
func (r *MarketRepository) GetByID(ctx context.Context, id int64) (*entities.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets WHERE id = $1`

	market, err := scanMarket(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market %d: %w", id, err)
	}

	return market, nil
}

// GetByIDForUpdate retrieves a market and locks its row for the current transaction
func (r *MarketRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets WHERE id = $1 FOR UPDATE`

	market, err := scanMarket(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock market %d: %w", id, err)
	}

	return market, nil
}

// List returns markets matching the filter, newest first
func (r *MarketRepository) List(ctx context.Context, filter entities.MarketFilter) ([]*entities.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *filter.Status)
		argNum++
	}
	if filter.MarketType != nil {
		query += fmt.Sprintf(" AND market_type = $%d", argNum)
		args = append(args, *filter.MarketType)
		argNum++
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
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}

	return scanMarkets(rows)
}

// RecordStake folds a new stake into the market's pool totals. The status and
// deadline guards run inside the UPDATE, so a market closed or expired after
// an earlier stale read is still rejected here.
func (r *MarketRepository) RecordStake(ctx context.Context, marketID int64, position entities.BetPosition, amount int64) error {
	query := `
		UPDATE markets
		SET yes_pool = yes_pool + CASE WHEN $2 = 'yes' THEN $3::bigint ELSE 0 END,
		    no_pool = no_pool + CASE WHEN $2 = 'no' THEN $3::bigint ELSE 0 END,
		    total_pool = total_pool + $3,
		    total_bettors = total_bettors + 1
		WHERE id = $1 AND status = 'active' AND resolve_at > NOW()
	`

	tag, err := r.q.Exec(ctx, query, marketID, string(position), amount)
	if err != nil {
		return fmt.Errorf("failed to record stake on market %d: %w", marketID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Distinguish why the guard rejected the stake.
	market, err := r.GetByID(ctx, marketID)
	if err != nil {
		return err
	}
	switch {
	case market == nil:
		return entities.ErrMarketNotFound
	case !market.IsActive():
		return entities.ErrMarketClosed
	default:
		return entities.ErrMarketExpired
	}
}

// GetExpiredActive returns active markets whose resolution deadline has passed
func (r *MarketRepository) GetExpiredActive(ctx context.Context, limit int) ([]*entities.Market, error) {
	query := `
		SELECT ` + marketColumns + `
		FROM markets
		WHERE status = 'active' AND resolve_at <= NOW()
		ORDER BY resolve_at ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired markets: %w", err)
	}

	return scanMarkets(rows)
}

// MarkResolved transitions a market from active to resolved. Returns false
// when the market was no longer active, so overlapping resolution cycles
// settle each market at most once.
func (r *MarketRepository) MarkResolved(ctx context.Context, id int64, outcome bool, priceAtResolution float64) (bool, error) {
	query := `
		UPDATE markets
		SET status = 'resolved',
		    outcome = $2,
		    price_at_resolution = $3,
		    resolved_at = NOW()
		WHERE id = $1 AND status = 'active'
	`

	tag, err := r.q.Exec(ctx, query, id, outcome, priceAtResolution)
	if err != nil {
		return false, fmt.Errorf("failed to resolve market %d: %w", id, err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkCancelled transitions a market from active to cancelled. Outcome stays
// null. Returns false when the market was no longer active.
func (r *MarketRepository) MarkCancelled(ctx context.Context, id int64, priceAtResolution *float64) (bool, error) {
	query := `
		UPDATE markets
		SET status = 'cancelled',
		    price_at_resolution = $2,
		    resolved_at = NOW()
		WHERE id = $1 AND status = 'active'
	`

	tag, err := r.q.Exec(ctx, query, id, priceAtResolution)
	if err != nil {
		return false, fmt.Errorf("failed to cancel market %d: %w", id, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ActiveOrRecentFingerprintExists reports whether a market with this
// fingerprint is currently active or was created after the cutoff
func (r *MarketRepository) ActiveOrRecentFingerprintExists(ctx context.Context, fingerprint string, createdAfter time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM markets
			WHERE fingerprint = $1 AND (status = 'active' OR created_at > $2)
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, fingerprint, createdAfter).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check fingerprint %s: %w", fingerprint, err)
	}

	return exists, nil
}

// Search matches question text or token symbol case-insensitively, newest first
func (r *MarketRepository) Search(ctx context.Context, query string, limit int) ([]*entities.Market, error) {
	sql := `
		SELECT ` + marketColumns + `
		FROM markets
		WHERE question ILIKE '%' || $1 || '%' OR token_symbol ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search markets for %q: %w", query, err)
	}

	return scanMarkets(rows)
}

// UpdateNarrative sets the narrative tag on a market
func (r *MarketRepository) UpdateNarrative(ctx context.Context, id int64, narrative string) error {
	query := `UPDATE markets SET narrative = $2 WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id, narrative)
	if err != nil {
		return fmt.Errorf("failed to update narrative on market %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrMarketNotFound
	}

	return nil
}

// ListUntagged returns markets that have not been assigned a narrative yet
func (r *MarketRepository) ListUntagged(ctx context.Context, limit int) ([]*entities.Market, error) {
	query := `
		SELECT ` + marketColumns + `
		FROM markets
		WHERE narrative IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list untagged markets: %w", err)
	}

	return scanMarkets(rows)
}
