package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/magicformula/internal/contracts"
)

// Schema creates the holdings table
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS portfolio_holdings (
		id             UUID PRIMARY KEY,
		symbol         TEXT NOT NULL UNIQUE,
		name           TEXT NOT NULL,
		shares         DOUBLE PRECISION NOT NULL CHECK (shares > 0),
		price          DOUBLE PRECISION NOT NULL,
		change         DOUBLE PRECISION NOT NULL DEFAULT 0,
		change_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		added_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_portfolio_holdings_added_at ON portfolio_holdings (added_at)`,
}

const uniqueViolation = "23505"

// Repository persists holdings in PostgreSQL
// ⭐ SSOT: holdings SQL lives here only
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new holdings repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectHoldings = `
	SELECT id::text, symbol, name, shares, price, change, change_percent, added_at
	FROM portfolio_holdings
`

// List returns holdings in the order they were added
func (r *Repository) List(ctx context.Context) ([]contracts.Holding, error) {
	rows, err := r.pool.Query(ctx, selectHoldings+` ORDER BY added_at, symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := make([]contracts.Holding, 0)
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, *h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return holdings, nil
}

// GetBySymbol returns ErrHoldingNotFound when symbol is not held
func (r *Repository) GetBySymbol(ctx context.Context, symbol string) (*contracts.Holding, error) {
	row := r.pool.QueryRow(ctx, selectHoldings+` WHERE symbol = $1`, symbol)

	h, err := scanHolding(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrHoldingNotFound)
	}
	if err != nil {
		return nil, err
	}

	return h, nil
}

// Create inserts a holding; a second insert of the same symbol is ErrDuplicateHolding
func (r *Repository) Create(ctx context.Context, h *contracts.Holding) error {
	query := `
		INSERT INTO portfolio_holdings (
			id, symbol, name, shares, price, change, change_percent, added_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		h.ID, h.Symbol, h.Name, h.Shares, h.Price, h.Change, h.ChangePercent, h.AddedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", h.Symbol, contracts.ErrDuplicateHolding)
	}
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}

	return nil
}

// DeleteBySymbol removes a holding; ErrHoldingNotFound when nothing was deleted
func (r *Repository) DeleteBySymbol(ctx context.Context, symbol string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM portfolio_holdings WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", symbol, contracts.ErrHoldingNotFound)
	}

	return nil
}

func scanHolding(row pgx.Row) (*contracts.Holding, error) {
	var h contracts.Holding
	err := row.Scan(&h.ID, &h.Symbol, &h.Name, &h.Shares, &h.Price, &h.Change, &h.ChangePercent, &h.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan holding: %w", err)
	}

	h.Value = holdingValue(h.Price, h.Shares)
	return &h, nil
}
