package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skupilot/internal/core/domain"
)

// CampaignRepository implements port.CampaignRepository using pgxpool
// for PostgreSQL.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

const campaignColumns = `id, sku_id, client_id, platform, account_id, external_id, name, status, budget_allocated, target_groups, creatives, created_at, updated_at`

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID,
		&c.SKUID,
		&c.ClientID,
		&c.Platform,
		&c.AccountID,
		&c.ExternalID,
		&c.Name,
		&c.Status,
		&c.BudgetAllocated,
		&c.TargetGroups,
		&c.Creatives,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// GetByID returns a campaign by id, or nil when it does not exist.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetBySKU returns every campaign of a SKU regardless of status.
func (r *CampaignRepository) GetBySKU(ctx context.Context, skuID string) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE sku_id = $1 ORDER BY created_at`, skuID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		return scanCampaign(row)
	})
}

// UpdateBudget sets the allocated budget and reports whether a row was
// affected.
func (r *CampaignRepository) UpdateBudget(ctx context.Context, id string, budget float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE campaigns SET budget_allocated = $1, updated_at = $2 WHERE id = $3`,
		budget, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus transitions a campaign and reports whether a row was
// affected. Campaigns are never deleted.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE campaigns SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
