package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skupilot/internal/core/domain"
)

// SKURepository implements port.SKURepository using pgxpool for PostgreSQL.
type SKURepository struct {
	pool *pgxpool.Pool
}

// NewSKURepository returns a new repository instance.
func NewSKURepository(pool *pgxpool.Pool) *SKURepository {
	return &SKURepository{pool: pool}
}

const skuColumns = `id, client_id, name, total_budget, remaining_budget, status, intelligence_settings, created_at, updated_at`

func scanSKU(row pgx.Row) (domain.SKU, error) {
	var (
		s           domain.SKU
		settingsRaw []byte
	)
	err := row.Scan(
		&s.ID,
		&s.ClientID,
		&s.Name,
		&s.TotalBudget,
		&s.RemainingBudget,
		&s.Status,
		&settingsRaw,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return s, err
	}
	if len(settingsRaw) > 0 {
		// malformed settings degrade to the global defaults
		_ = json.Unmarshal(settingsRaw, &s.IntelligenceSettings)
	}
	return s, nil
}

// GetByID returns a SKU by id, or nil when it does not exist.
func (r *SKURepository) GetByID(ctx context.Context, id string) (*domain.SKU, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+skuColumns+` FROM skus WHERE id = $1`, id)
	s, err := scanSKU(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AdjustRemainingBudget applies a delta to the remaining budget,
// clamped so the invariant 0 <= remaining_budget <= total_budget holds.
func (r *SKURepository) AdjustRemainingBudget(ctx context.Context, id string, delta float64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
        UPDATE skus
        SET remaining_budget = GREATEST(0, LEAST(total_budget, remaining_budget - $1)),
            updated_at = now()
        WHERE id = $2`, delta, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListActive returns every SKU under automated management.
func (r *SKURepository) ListActive(ctx context.Context) ([]domain.SKU, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+skuColumns+` FROM skus WHERE status = $1 ORDER BY created_at`, domain.SKUStatusActive)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SKU, error) {
		return scanSKU(row)
	})
}
