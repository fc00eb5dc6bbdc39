package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo data: one active SKU with campaigns on every
// platform and a week of hourly performance metrics, enough to push the
// SKU past the explore thresholds.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	skuID := "sku-demo-1"
	clientID := "client-demo"
	createdAt := time.Now().AddDate(0, 0, -14)
	_, err := db.Exec(ctx, `INSERT INTO skus
    (id, client_id, name, total_budget, remaining_budget, status, intelligence_settings, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,'active','{}',$6,now()) ON CONFLICT DO NOTHING`,
		skuID, clientID, "Demo Product Line", 10000.0, 8000.0, createdAt)
	if err != nil {
		return err
	}

	platforms := []string{"google_ads", "meta_ads", "tiktok_ads", "linkedin_ads"}
	for i, platform := range platforms {
		campaignID := fmt.Sprintf("camp-demo-%d", i+1)
		name := fmt.Sprintf("Demo Campaign %d (%s)", i+1, platform)
		budget := 400.0 + float64(i)*100
		_, err = db.Exec(ctx, `INSERT INTO campaigns
    (id, sku_id, client_id, platform, account_id, external_id, name, status, budget_allocated, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,'active',$8,$9,now()) ON CONFLICT DO NOTHING`,
			campaignID, skuID, clientID, platform, fmt.Sprintf("acct-%d", i+1),
			uuid.NewString(), name, budget, createdAt)
		if err != nil {
			return err
		}

		// a week of hourly observations with platform-skewed ROAS
		for h := 0; h < 7*24; h++ {
			spend := 1.0 + r.Float64()*4
			impressions := int64(200 + r.Intn(800))
			clicks := int64(float64(impressions) * (0.01 + r.Float64()*0.04))
			conversions := int64(float64(clicks) * (0.05 + r.Float64()*0.15))
			roas := float64(conversions) * (1.0 + float64(i)) / spend
			_, err = db.Exec(ctx, `INSERT INTO performance_metrics
    (campaign_id, sku_id, client_id, recorded_at, spend, impressions, clicks, conversions, roas, ctr, cpc, platform, mode)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'explore')`,
				campaignID, skuID, clientID, time.Now().Add(-time.Duration(h)*time.Hour),
				spend, impressions, clicks, conversions, roas,
				float64(clicks)/float64(impressions)*100, spend/float64(max(clicks, 1)),
				platform)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
