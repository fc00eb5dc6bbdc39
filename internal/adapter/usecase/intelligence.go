package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"skupilot/internal/config/configs"
	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

// Intelligence is the per-SKU decision engine. Every cycle it
// recomputes the explore/exploit regime from current metrics, derives
// bounded budget deltas per campaign, executes them through the
// fallback middleware, and appends one audit record. The mode is never
// persisted: each cycle is memoryless and idempotent with respect to
// the state machine.
type Intelligence struct {
	cfg       configs.Intelligence
	skus      port.SKURepository
	campaigns port.CampaignRepository
	metrics   port.MetricsRepository
	decisions port.DecisionLog
	executor  port.Orchestrator
	log       *slog.Logger
	now       port.Clock
}

func NewIntelligence(
	cfg configs.Intelligence,
	skus port.SKURepository,
	campaigns port.CampaignRepository,
	metrics port.MetricsRepository,
	decisions port.DecisionLog,
	executor port.Orchestrator,
	log *slog.Logger,
) *Intelligence {
	return &Intelligence{
		cfg:       cfg,
		skus:      skus,
		campaigns: campaigns,
		metrics:   metrics,
		decisions: decisions,
		executor:  executor,
		log:       log,
		now:       time.Now,
	}
}

// MakeHourlyDecisions runs one full decision cycle for a SKU:
// fetch performance, determine mode, derive decisions, execute them,
// log the cycle. Internal failures come back as a structured result.
func (in *Intelligence) MakeHourlyDecisions(ctx context.Context, skuID string) port.DecisionOutcome {
	sku, err := in.skus.GetByID(ctx, skuID)
	if err != nil {
		return port.DecisionOutcome{Success: false, Message: fmt.Sprintf("sku lookup failed: %v", err)}
	}
	if sku == nil {
		return port.DecisionOutcome{Success: false, Message: "SKU not found"}
	}

	perf := in.GetSKUPerformance(ctx, skuID)
	mode := in.DetermineMode(perf)

	var decisions []domain.BudgetDecision
	if mode == domain.ModeExplore {
		decisions, err = in.ExploreDecisions(ctx, skuID, perf)
	} else {
		decisions, err = in.ExploitDecisions(ctx, skuID, perf)
	}
	if err != nil {
		return port.DecisionOutcome{Success: false, Message: fmt.Sprintf("decision derivation failed: %v", err)}
	}

	results := in.ExecuteDecisions(ctx, decisions)
	in.adjustRemainingBudget(ctx, skuID, results)
	in.logDecisions(ctx, skuID, sku.ClientID, mode, decisions, results, perf)

	return port.DecisionOutcome{
		Success:          true,
		Mode:             mode,
		Decisions:        decisions,
		ExecutionResults: results,
	}
}

// DetermineMode picks the regime from current performance. The four
// rules are evaluated in order; the first match wins:
//  1. young SKU  -> explore
//  2. thin data  -> explore
//  3. confident and profitable -> exploit
//  4. default    -> explore
func (in *Intelligence) DetermineMode(perf domain.SKUPerformance) domain.Mode {
	if perf.DaysRunning < in.cfg.ExploreModeDurationDays {
		return domain.ModeExplore
	}
	if perf.TotalImpressions < in.cfg.ImpressionThreshold {
		return domain.ModeExplore
	}
	if perf.ConfidenceScore > in.cfg.ExploitConfidenceThreshold && perf.AvgROAS > in.cfg.MinROASForExploit {
		return domain.ModeExploit
	}
	return domain.ModeExplore
}

// ExploreDecisions reallocates a learning budget toward the weakest
// campaigns: the three lowest-ROAS active campaigns split
// explore_budget_percentage of the total active budget evenly, floored
// at the minimum campaign budget. No-op changes are suppressed.
func (in *Intelligence) ExploreDecisions(ctx context.Context, skuID string, perf domain.SKUPerformance) ([]domain.BudgetDecision, error) {
	active, err := in.activeCampaigns(ctx, skuID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	var totalBudget float64
	for _, c := range active {
		totalBudget += c.BudgetAllocated
	}
	exploreBudget := totalBudget * in.cfg.ExploreBudgetPercentage / 100

	// lowest ROAS first; campaigns without metrics count as zero
	sort.SliceStable(active, func(i, j int) bool {
		return perf.Campaigns[active[i].ID].ROAS < perf.Campaigns[active[j].ID].ROAS
	})
	targets := active
	if len(targets) > 3 {
		targets = targets[:3]
	}

	var decisions []domain.BudgetDecision
	for i, c := range targets {
		newBudget := c.BudgetAllocated + exploreBudget/3
		if newBudget < in.cfg.MinCampaignBudget {
			newBudget = in.cfg.MinCampaignBudget
		}
		if newBudget == c.BudgetAllocated {
			continue
		}
		decisions = append(decisions, domain.BudgetDecision{
			Type:       domain.DecisionBudgetAllocation,
			CampaignID: c.ID,
			OldBudget:  c.BudgetAllocated,
			NewBudget:  newBudget,
			Reason:     fmt.Sprintf("explore: learning allocation to underperformer #%d", i+1),
		})
	}
	return decisions, nil
}

// ExploitDecisions adjusts each active campaign independently: high
// performers get a 10%% increase capped by the single-cycle limit, low
// performers lose 20%% down to the minimum budget, and campaigns in
// between are left alone.
func (in *Intelligence) ExploitDecisions(ctx context.Context, skuID string, perf domain.SKUPerformance) ([]domain.BudgetDecision, error) {
	active, err := in.activeCampaigns(ctx, skuID)
	if err != nil {
		return nil, err
	}

	var decisions []domain.BudgetDecision
	for _, c := range active {
		roas := perf.Campaigns[c.ID].ROAS
		current := c.BudgetAllocated

		switch {
		case roas > in.cfg.HighROASThreshold:
			newBudget := current * 1.1
			cap := current * (1 + in.cfg.MaxDailyBudgetIncreasePercentage/100)
			if newBudget > cap {
				newBudget = cap
			}
			if newBudget == current {
				continue
			}
			decisions = append(decisions, domain.BudgetDecision{
				Type:       domain.DecisionBudgetAllocation,
				CampaignID: c.ID,
				OldBudget:  current,
				NewBudget:  newBudget,
				Reason:     fmt.Sprintf("exploit: high ROAS (%.2f), increasing budget", roas),
			})
		case roas < in.cfg.LowROASThreshold:
			newBudget := current * 0.8
			if newBudget < in.cfg.MinCampaignBudget {
				newBudget = in.cfg.MinCampaignBudget
			}
			if newBudget == current {
				continue
			}
			decisions = append(decisions, domain.BudgetDecision{
				Type:       domain.DecisionBudgetAllocation,
				CampaignID: c.ID,
				OldBudget:  current,
				NewBudget:  newBudget,
				Reason:     fmt.Sprintf("exploit: low ROAS (%.2f), decreasing budget", roas),
			})
		}
	}
	return decisions, nil
}

// ExecuteDecisions runs the decisions sequentially. A failing decision
// is recorded and never blocks its siblings.
func (in *Intelligence) ExecuteDecisions(ctx context.Context, decisions []domain.BudgetDecision) []domain.ExecutionResult {
	results := make([]domain.ExecutionResult, 0, len(decisions))
	for _, d := range decisions {
		ok, err := in.executeOne(ctx, d)
		msg := executionMessage(d.Type, ok)
		if err != nil {
			ok = false
			msg = fmt.Sprintf("execution error: %v", err)
		}
		results = append(results, domain.ExecutionResult{Decision: d, Success: ok, Message: msg})
	}
	return results
}

func (in *Intelligence) executeOne(ctx context.Context, d domain.BudgetDecision) (bool, error) {
	switch d.Type {
	case domain.DecisionBudgetAllocation:
		campaign, err := in.campaigns.GetByID(ctx, d.CampaignID)
		if err != nil {
			return false, err
		}
		if campaign == nil {
			return false, fmt.Errorf("campaign %s not found", d.CampaignID)
		}
		res := in.executor.ExecuteBudgetChange(ctx, externalID(campaign), d.NewBudget, campaign.Platform, campaign.AccountID)
		if !res.Success {
			return false, nil
		}
		return in.campaigns.UpdateBudget(ctx, d.CampaignID, d.NewBudget)
	case domain.DecisionPauseCampaign:
		campaign, err := in.campaigns.GetByID(ctx, d.CampaignID)
		if err != nil {
			return false, err
		}
		if campaign == nil {
			return false, fmt.Errorf("campaign %s not found", d.CampaignID)
		}
		res := in.executor.PauseCampaignWithFallback(ctx, externalID(campaign), campaign.Platform, campaign.AccountID)
		if !res.Success {
			return false, nil
		}
		return in.campaigns.UpdateStatus(ctx, d.CampaignID, domain.CampaignStatusPaused)
	case domain.DecisionActivateCampaign:
		return in.campaigns.UpdateStatus(ctx, d.CampaignID, domain.CampaignStatusActive)
	default:
		return false, fmt.Errorf("unknown decision type %q", d.Type)
	}
}

// GetSKUPerformance aggregates the recent performance window for a SKU.
// Errors degrade to a zero-valued snapshot, which keeps the SKU in
// explore mode rather than aborting the cycle.
func (in *Intelligence) GetSKUPerformance(ctx context.Context, skuID string) domain.SKUPerformance {
	zero := domain.SKUPerformance{Campaigns: map[string]domain.CampaignPerformance{}}

	campaigns, err := in.campaigns.GetBySKU(ctx, skuID)
	if err != nil {
		in.log.Error("campaign fetch failed", slog.String("sku_id", skuID), slog.Any("error", err))
		return zero
	}
	if len(campaigns) == 0 {
		return zero
	}

	end := in.now()
	w := domain.Window{Start: end.AddDate(0, 0, -in.cfg.PerformanceWindowDays), End: end}
	aggregates, err := in.metrics.PerformanceBySKU(ctx, skuID, w)
	if err != nil {
		in.log.Error("performance fetch failed", slog.String("sku_id", skuID), slog.Any("error", err))
		return zero
	}

	perf := domain.SKUPerformance{Campaigns: make(map[string]domain.CampaignPerformance, len(aggregates))}
	var totalSpend, totalConversions float64
	for _, a := range aggregates {
		perf.Campaigns[a.CampaignID] = domain.CampaignPerformance{
			Spend:       a.TotalSpend,
			Impressions: a.TotalImpressions,
			Clicks:      a.TotalClicks,
			Conversions: a.TotalConversions,
			ROAS:        a.AvgROAS,
			DataPoints:  a.DataPoints,
		}
		totalSpend += a.TotalSpend
		perf.TotalImpressions += a.TotalImpressions
		totalConversions += float64(a.TotalConversions)
		perf.DataPoints += a.DataPoints
	}
	perf.TotalSpend = totalSpend
	perf.TotalConversions = int64(totalConversions)
	if totalSpend > 0 {
		perf.AvgROAS = totalConversions / totalSpend
	}
	perf.ConfidenceScore = confidence(perf.DataPoints, in.cfg.MinimumDataPoints)
	perf.DaysRunning = daysRunning(campaigns, end)
	return perf
}

// adjustRemainingBudget commits the net budget delta of the successful
// allocation changes against the SKU envelope. Failed decisions never
// touch the envelope.
func (in *Intelligence) adjustRemainingBudget(ctx context.Context, skuID string, results []domain.ExecutionResult) {
	var delta float64
	for _, r := range results {
		if r.Success && r.Decision.Type == domain.DecisionBudgetAllocation {
			delta += r.Decision.NewBudget - r.Decision.OldBudget
		}
	}
	if delta == 0 {
		return
	}
	if _, err := in.skus.AdjustRemainingBudget(ctx, skuID, delta); err != nil {
		in.log.Error("remaining budget adjustment failed",
			slog.String("sku_id", skuID), slog.Any("error", err))
	}
}

// logDecisions appends the write-once audit record for this cycle.
func (in *Intelligence) logDecisions(ctx context.Context, skuID, clientID string, mode domain.Mode, decisions []domain.BudgetDecision, results []domain.ExecutionResult, perf domain.SKUPerformance) {
	record := domain.IntelligenceDecision{
		ID:               uuid.NewString(),
		SKUID:            skuID,
		ClientID:         clientID,
		Timestamp:        in.now(),
		DecisionType:     "hourly_optimization",
		Mode:             mode,
		Decisions:        decisions,
		ExecutionResults: results,
		DataPointsUsed:   perf.DataPoints,
		ConfidenceScore:  perf.ConfidenceScore,
	}
	if err := in.decisions.Append(ctx, record); err != nil {
		in.log.Error("decision log append failed", slog.String("sku_id", skuID), slog.Any("error", err))
	}
}

func (in *Intelligence) activeCampaigns(ctx context.Context, skuID string) ([]domain.Campaign, error) {
	campaigns, err := in.campaigns.GetBySKU(ctx, skuID)
	if err != nil {
		return nil, err
	}
	active := campaigns[:0:0]
	for _, c := range campaigns {
		if c.Status == domain.CampaignStatusActive {
			active = append(active, c)
		}
	}
	return active, nil
}

// confidence is min(dataPoints/minimum, 1): monotonic, capped, never
// negative.
func confidence(dataPoints, minimum int) float64 {
	if minimum <= 0 {
		return 1.0
	}
	score := float64(dataPoints) / float64(minimum)
	if score > 1 {
		return 1.0
	}
	return score
}

// daysRunning is the age of the oldest campaign in whole days.
func daysRunning(campaigns []domain.Campaign, now time.Time) int {
	oldest := now
	for _, c := range campaigns {
		if !c.CreatedAt.IsZero() && c.CreatedAt.Before(oldest) {
			oldest = c.CreatedAt
		}
	}
	return int(now.Sub(oldest).Hours() / 24)
}

func executionMessage(decisionType string, ok bool) string {
	switch decisionType {
	case domain.DecisionBudgetAllocation:
		if ok {
			return "budget updated successfully"
		}
		return "budget update failed"
	case domain.DecisionPauseCampaign:
		if ok {
			return "campaign paused successfully"
		}
		return "campaign pause failed"
	case domain.DecisionActivateCampaign:
		if ok {
			return "campaign activated successfully"
		}
		return "campaign activation failed"
	}
	return "unknown decision type"
}

// externalID picks the platform-side campaign id, falling back to the
// internal id for campaigns created before external sync.
func externalID(c *domain.Campaign) string {
	if c.ExternalID != "" {
		return c.ExternalID
	}
	return c.ID
}
