package domain

import "time"

// Mode is the budget-allocation regime of a SKU. It is recomputed from
// current metrics each decision cycle, never persisted as live state.
type Mode string

const (
	ModeExplore Mode = "explore"
	ModeExploit Mode = "exploit"
)

// Decision types the engine can emit.
const (
	DecisionBudgetAllocation = "budget_allocation"
	DecisionPauseCampaign    = "pause_campaign"
	DecisionActivateCampaign = "activate_campaign"
)

// BudgetDecision is one bounded, explainable change to a single campaign.
type BudgetDecision struct {
	Type       string  `json:"type"`
	CampaignID string  `json:"campaign_id"`
	OldBudget  float64 `json:"old_budget"`
	NewBudget  float64 `json:"new_budget"`
	Reason     string  `json:"reason"`
}

// ExecutionResult records the outcome of executing one decision. Results
// are 1:1 with decisions; a failure never aborts sibling decisions.
type ExecutionResult struct {
	Decision BudgetDecision `json:"decision"`
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
}

// IntelligenceDecision is the write-once audit record of one engine
// decision cycle for a SKU. It is the accountability trail for automated
// spend changes and is never mutated after being appended.
type IntelligenceDecision struct {
	ID               string
	SKUID            string
	ClientID         string
	Timestamp        time.Time
	DecisionType     string
	Mode             Mode
	Decisions        []BudgetDecision
	ExecutionResults []ExecutionResult
	DataPointsUsed   int
	ConfidenceScore  float64
}
