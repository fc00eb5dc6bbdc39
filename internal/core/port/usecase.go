package port

import (
	"context"

	"skupilot/internal/core/domain"
)

// OperationResult is the outcome of one logical operation executed
// through the fallback middleware. Source identifies the winning path:
// an integrator name or "direct_<platform>".
type OperationResult struct {
	Success    bool   `json:"success"`
	Source     string `json:"source,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
	Message    string `json:"message"`
}

// DecisionOutcome is the result of one engine decision cycle for a SKU.
// On failure only Success and Message are populated.
type DecisionOutcome struct {
	Success          bool                     `json:"success"`
	Mode             domain.Mode              `json:"mode,omitempty"`
	Decisions        []domain.BudgetDecision  `json:"decisions,omitempty"`
	ExecutionResults []domain.ExecutionResult `json:"execution_results,omitempty"`
	Message          string                   `json:"message,omitempty"`
}

// AggregateResult wraps a multi-source performance aggregation.
type AggregateResult struct {
	Success bool                          `json:"success"`
	Message string                        `json:"message,omitempty"`
	Data    *domain.AggregatedPerformance `json:"data,omitempty"`
}

// Orchestrator is the inbound port of the fallback middleware: logical
// operations executed across registered integrators and platform
// connectors with retry, fallback and rate-limit handling. Failures are
// structured results, never errors.
type Orchestrator interface {
	ExecuteBudgetChange(ctx context.Context, campaignID string, newBudget float64, platform, accountID string) OperationResult
	CreateCampaignWithFallback(ctx context.Context, draft domain.CampaignDraft) OperationResult
	PauseCampaignWithFallback(ctx context.Context, campaignID, platform, accountID string) OperationResult
	AggregatePerformanceData(ctx context.Context, campaignID, platform, accountID string, w domain.Window) AggregateResult
}

// IntelligenceUseCase is the inbound port of the SKU intelligence
// engine.
type IntelligenceUseCase interface {
	MakeHourlyDecisions(ctx context.Context, skuID string) DecisionOutcome
}
