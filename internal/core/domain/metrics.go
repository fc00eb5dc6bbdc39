package domain

import "time"

// Window is a half-open observation interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// PerformanceMetric is one observation window for one campaign. Records
// are append-only and immutable once written; the engine consumes them
// read-only.
type PerformanceMetric struct {
	CampaignID  string
	SKUID       string
	ClientID    string
	Timestamp   time.Time
	Spend       float64
	Impressions int64
	Clicks      int64
	Conversions int64
	ROAS        float64
	CTR         float64
	CPC         float64
	Platform    string
	Mode        Mode
}

// RawIntegrationMetrics is the as-received snapshot of one vendor's
// performance payload for one campaign and window. It is persisted
// verbatim before any normalization so the audit trail survives later
// changes to the mapping rules.
type RawIntegrationMetrics struct {
	ID         string
	Vendor     string
	CampaignID string
	Platform   string
	AccountID  string
	Payload    map[string]any
	Start      time.Time
	End        time.Time
	FetchedAt  time.Time
}

// NormalizedMetrics is the canonical form of a vendor payload, derived
// deterministically from the raw snapshot. One record per (vendor,
// campaign, window).
type NormalizedMetrics struct {
	Vendor           string
	CampaignID       string
	Platform         string
	AccountID        string
	Start            time.Time
	End              time.Time
	Spend            float64
	Impressions      int64
	Clicks           int64
	Conversions      int64
	CTR              float64
	CPC              float64
	ROAS             float64
	CPM              float64
	DataQualityScore float64
	AggregatedAt     time.Time
}

// CampaignAggregate is a per-campaign rollup of performance metrics over
// a window, produced by the metrics store.
type CampaignAggregate struct {
	CampaignID       string
	TotalSpend       float64
	TotalImpressions int64
	TotalClicks      int64
	TotalConversions int64
	AvgROAS          float64
	DataPoints       int
}

// CampaignPerformance is the per-campaign slice of a SKU performance
// snapshot used for decision making.
type CampaignPerformance struct {
	Spend       float64
	Impressions int64
	Clicks      int64
	Conversions int64
	ROAS        float64
	DataPoints  int
}

// SKUPerformance aggregates recent performance across all campaigns of a
// SKU. ConfidenceScore is min(DataPoints/minimum_data_points, 1).
type SKUPerformance struct {
	TotalSpend       float64
	TotalImpressions int64
	TotalConversions int64
	AvgROAS          float64
	ConfidenceScore  float64
	DaysRunning      int
	DataPoints       int
	Campaigns        map[string]CampaignPerformance
}

// AggregatedPerformance is the multi-source aggregate the fallback
// middleware produces for one campaign and window, with a data-quality
// score reflecting source agreement.
type AggregatedPerformance struct {
	CampaignID       string
	Platform         string
	Sources          []string
	TotalSpend       float64
	TotalImpressions int64
	TotalClicks      int64
	TotalConversions int64
	AvgROAS          float64
	AvgCTR           float64
	AvgCPC           float64
	DataQualityScore float64
	Timestamp        time.Time
}
