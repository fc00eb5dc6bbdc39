package port

import (
	"context"

	"skupilot/internal/core/domain"
)

// SKURepository reads SKU state and tracks the budget envelope. The
// engine never mutates SKU documents beyond the remaining budget.
type SKURepository interface {
	GetByID(ctx context.Context, id string) (*domain.SKU, error)
	ListActive(ctx context.Context) ([]domain.SKU, error)
	// AdjustRemainingBudget applies a delta (positive = spend committed)
	// clamped to [0, total_budget] and reports whether a row was
	// affected.
	AdjustRemainingBudget(ctx context.Context, id string, delta float64) (bool, error)
}

// CampaignRepository reads and mutates campaign state. Update methods
// report whether a row was affected; "deleting" a campaign is a status
// transition.
type CampaignRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	GetBySKU(ctx context.Context, skuID string) ([]domain.Campaign, error)
	UpdateBudget(ctx context.Context, id string, budget float64) (bool, error)
	UpdateStatus(ctx context.Context, id string, status string) (bool, error)
}

// MetricsRepository is the append-only store for performance metrics and
// the raw/normalized integration metric snapshots.
type MetricsRepository interface {
	// PerformanceBySKU rolls up per-campaign metrics over the half-open
	// window [w.Start, w.End).
	PerformanceBySKU(ctx context.Context, skuID string, w domain.Window) ([]domain.CampaignAggregate, error)
	SaveRaw(ctx context.Context, raw domain.RawIntegrationMetrics) error
	SaveNormalized(ctx context.Context, m domain.NormalizedMetrics) error
}

// DecisionLog is the append-only audit trail of engine decision cycles.
type DecisionLog interface {
	Append(ctx context.Context, d domain.IntelligenceDecision) error
}
