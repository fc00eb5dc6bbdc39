package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skupilot/internal/core/domain"
)

// MetricsRepository implements port.MetricsRepository using pgxpool for
// PostgreSQL. All writes are append-only.
type MetricsRepository struct {
	pool *pgxpool.Pool
}

// NewMetricsRepository returns a new repository instance.
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

// PerformanceBySKU rolls up per-campaign metrics over the half-open
// window [w.Start, w.End). ROAS is recomputed from the summed spend and
// conversions rather than averaged, so sparse days do not skew it.
func (r *MetricsRepository) PerformanceBySKU(ctx context.Context, skuID string, w domain.Window) ([]domain.CampaignAggregate, error) {
	query := `
        SELECT
            campaign_id,
            COALESCE(sum(spend), 0),
            COALESCE(sum(impressions), 0),
            COALESCE(sum(clicks), 0),
            COALESCE(sum(conversions), 0),
            CASE WHEN sum(spend) > 0
                 THEN sum(conversions)::float8 / sum(spend)
                 ELSE 0 END,
            count(*)
        FROM performance_metrics
        WHERE sku_id = $1 AND recorded_at >= $2 AND recorded_at < $3
        GROUP BY campaign_id`
	rows, err := r.pool.Query(ctx, query, skuID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CampaignAggregate, error) {
		var a domain.CampaignAggregate
		err := row.Scan(
			&a.CampaignID,
			&a.TotalSpend,
			&a.TotalImpressions,
			&a.TotalClicks,
			&a.TotalConversions,
			&a.AvgROAS,
			&a.DataPoints,
		)
		return a, err
	})
}

// SaveRaw appends one vendor payload snapshot verbatim.
func (r *MetricsRepository) SaveRaw(ctx context.Context, raw domain.RawIntegrationMetrics) error {
	payload, err := json.Marshal(raw.Payload)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
        INSERT INTO integration_metrics_raw
            (id, vendor, campaign_id, platform, account_id, payload, window_start, window_end, fetched_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		raw.ID, raw.Vendor, raw.CampaignID, raw.Platform, raw.AccountID,
		payload, raw.Start, raw.End, raw.FetchedAt)
	return err
}

// SaveNormalized appends one canonical metrics record.
func (r *MetricsRepository) SaveNormalized(ctx context.Context, m domain.NormalizedMetrics) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO integration_metrics
            (vendor, campaign_id, platform, account_id, window_start, window_end,
             spend, impressions, clicks, conversions, ctr, cpc, roas, cpm,
             data_quality_score, aggregated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		m.Vendor, m.CampaignID, m.Platform, m.AccountID, m.Start, m.End,
		m.Spend, m.Impressions, m.Clicks, m.Conversions, m.CTR, m.CPC, m.ROAS, m.CPM,
		m.DataQualityScore, m.AggregatedAt)
	return err
}
