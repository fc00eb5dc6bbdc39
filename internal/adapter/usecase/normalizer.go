package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

// MetricsService maps heterogeneous vendor payloads into the canonical
// metric record and persists both raw and normalized forms. Raw
// snapshots are saved before normalization so the audit trail survives
// later changes to the mapping rules.
type MetricsService struct {
	repo port.MetricsRepository
	now  port.Clock
}

func NewMetricsService(repo port.MetricsRepository) *MetricsService {
	return &MetricsService{repo: repo, now: time.Now}
}

// SaveRaw persists the as-received payload verbatim.
func (s *MetricsService) SaveRaw(ctx context.Context, vendor, campaignID, platform, accountID string, payload map[string]any, w domain.Window) error {
	return s.repo.SaveRaw(ctx, domain.RawIntegrationMetrics{
		ID:         uuid.NewString(),
		Vendor:     vendor,
		CampaignID: campaignID,
		Platform:   platform,
		AccountID:  accountID,
		Payload:    payload,
		Start:      w.Start,
		End:        w.End,
		FetchedAt:  s.now(),
	})
}

// Normalize is a total, deterministic mapping from a vendor payload to
// the canonical record. It is defensive against missing and aliased
// keys and never fails.
func (s *MetricsService) Normalize(vendor string, payload map[string]any, campaignID, platform, accountID string, w domain.Window) domain.NormalizedMetrics {
	spend := num(payload, "spend", "total_spend", "cost")
	impressions := int64(num(payload, "impressions", "total_impressions"))
	clicks := int64(num(payload, "clicks", "total_clicks"))
	conversions := int64(num(payload, "conversions", "total_conversions"))

	ctr := num(payload, "ctr")
	if impressions > 0 {
		ctr = float64(clicks) / float64(impressions) * 100
	}
	cpc := num(payload, "cpc")
	if clicks > 0 {
		cpc = spend / float64(clicks)
	}
	roas := num(payload, "roas")
	if spend > 0 {
		roas = float64(conversions) / spend
	}
	cpm := num(payload, "cpm")
	if impressions > 0 {
		cpm = spend / float64(impressions) * 1000
	}

	return domain.NormalizedMetrics{
		Vendor:       vendor,
		CampaignID:   campaignID,
		Platform:     platform,
		AccountID:    accountID,
		Start:        w.Start,
		End:          w.End,
		Spend:        spend,
		Impressions:  impressions,
		Clicks:       clicks,
		Conversions:  conversions,
		CTR:          ctr,
		CPC:          cpc,
		ROAS:         roas,
		CPM:          cpm,
		AggregatedAt: s.now(),
	}
}

// SaveNormalized persists the canonical record.
func (s *MetricsService) SaveNormalized(ctx context.Context, m domain.NormalizedMetrics) error {
	return s.repo.SaveNormalized(ctx, m)
}

// num reads the first present numeric field among the given aliases,
// defaulting to zero. Vendor payloads arrive with mixed numeric types
// depending on how they were decoded.
func num(payload map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := payload[k].(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		}
	}
	return 0
}
