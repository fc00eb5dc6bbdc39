package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"skupilot/internal/config/configs"
	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

const (
	maxPlatformAttempts = 3
	backoffStep         = 500 * time.Millisecond
)

// Middleware orchestrates logical operations across the registered
// integrators and platform connectors. Every operation tries the
// integrators first in registration order (first success wins) and
// falls back to the named direct platform connector when enabled.
// Failures come back as structured results, never as errors.
type Middleware struct {
	registry *port.Registry
	metrics  *MetricsService
	health   *HealthTracker
	log      *slog.Logger

	fallbackEnabled bool
	callTimeout     time.Duration
	rateLimitDelay  func(platform string) time.Duration
	sleep           func(time.Duration)
	now             port.Clock
}

// NewMiddleware wires the middleware. health may be nil to run without
// cooldown tracking.
func NewMiddleware(registry *port.Registry, metrics *MetricsService, health *HealthTracker, cfg configs.Connectors, log *slog.Logger) *Middleware {
	return &Middleware{
		registry:        registry,
		metrics:         metrics,
		health:          health,
		log:             log,
		fallbackEnabled: cfg.FallbackEnabled,
		callTimeout:     cfg.CallTimeout,
		rateLimitDelay:  cfg.RateLimitDelay,
		sleep:           time.Sleep,
		now:             time.Now,
	}
}

func (m *Middleware) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.callTimeout)
}

// ExecuteBudgetChange pushes a new budget for a campaign through the
// first path that accepts it.
func (m *Middleware) ExecuteBudgetChange(ctx context.Context, campaignID string, newBudget float64, platform, accountID string) port.OperationResult {
	integ := m.tryIntegratorBudgetChange(ctx, campaignID, newBudget)
	if integ.Success {
		return integ
	}
	if !m.fallbackEnabled {
		return port.OperationResult{Success: false, Message: integ.Message}
	}
	direct := m.tryPlatformBudgetChange(ctx, campaignID, newBudget, platform)
	if direct.Success {
		return direct
	}
	return port.OperationResult{
		Success: false,
		Message: fmt.Sprintf("both integrator and direct platform paths failed: %s; %s", integ.Message, direct.Message),
	}
}

func (m *Middleware) tryIntegratorBudgetChange(ctx context.Context, campaignID string, newBudget float64) port.OperationResult {
	for _, entry := range m.registry.Integrators() {
		if m.health.InCooldown(ctx, entry.Name) {
			continue
		}
		cctx, cancel := m.withTimeout(ctx)
		ok, err := entry.Integrator.UpdateCampaignBudget(cctx, campaignID, newBudget)
		cancel()
		if err != nil || !ok {
			m.health.RecordFailure(ctx, entry.Name)
			m.log.Warn("integrator budget change failed",
				slog.String("integrator", entry.Name), slog.Any("error", err))
			continue
		}
		m.health.RecordSuccess(ctx, entry.Name)
		return port.OperationResult{
			Success: true,
			Source:  entry.Name,
			Message: fmt.Sprintf("budget updated via %s", entry.Name),
		}
	}
	return port.OperationResult{Success: false, Message: "all integrators failed"}
}

func (m *Middleware) tryPlatformBudgetChange(ctx context.Context, campaignID string, newBudget float64, platform string) port.OperationResult {
	conn, ok := m.registry.Platform(platform)
	if !ok {
		return port.OperationResult{Success: false, Message: fmt.Sprintf("platform %s not available", platform)}
	}
	source := "direct_" + platform
	if m.health.InCooldown(ctx, source) {
		return port.OperationResult{Success: false, Message: fmt.Sprintf("platform %s in cooldown", platform)}
	}

	for attempt := 0; attempt < maxPlatformAttempts; attempt++ {
		cctx, cancel := m.withTimeout(ctx)
		updated, err := conn.UpdateCampaignBudget(cctx, campaignID, newBudget)
		cancel()
		if err != nil {
			return m.platformError(ctx, platform, source, err)
		}
		if updated {
			m.health.RecordSuccess(ctx, source)
			return port.OperationResult{
				Success: true,
				Source:  source,
				Message: fmt.Sprintf("budget updated via direct %s API", platform),
			}
		}
		// transient false return: linear backoff, then retry
		if attempt < maxPlatformAttempts-1 {
			m.sleep(time.Duration(attempt+1) * backoffStep)
		}
	}
	m.health.RecordFailure(ctx, source)
	return port.OperationResult{Success: false, Message: fmt.Sprintf("direct %s API failed", platform)}
}

// platformError maps a connector error to a failure result. Rate limits
// short-circuit remaining attempts after sleeping the platform delay;
// auth and integration errors surface immediately.
func (m *Middleware) platformError(ctx context.Context, platform, source string, err error) port.OperationResult {
	var rle *port.RateLimitError
	if errors.As(err, &rle) {
		delay := rle.RetryAfter
		if delay <= 0 {
			delay = m.rateLimitDelay(platform)
		}
		m.health.RecordRateLimit(ctx, source, delay)
		m.sleep(delay)
		return port.OperationResult{Success: false, Message: fmt.Sprintf("rate limited on %s", platform)}
	}
	m.health.RecordFailure(ctx, source)
	return port.OperationResult{Success: false, Message: fmt.Sprintf("direct %s API error: %v", platform, err)}
}

// CreateCampaignWithFallback creates the campaign through the first
// capable path. Creation is not retried on a given path: a create that
// timed out may still have gone through, and doubling campaigns is
// worse than surfacing the failure.
func (m *Middleware) CreateCampaignWithFallback(ctx context.Context, draft domain.CampaignDraft) port.OperationResult {
	for _, entry := range m.registry.Integrators() {
		if !entry.CanCreate || m.health.InCooldown(ctx, entry.Name) {
			continue
		}
		creator := entry.Integrator.(port.CampaignCreator)
		cctx, cancel := m.withTimeout(ctx)
		id, err := creator.CreateCampaign(cctx, draft)
		cancel()
		if err != nil || id == "" {
			m.health.RecordFailure(ctx, entry.Name)
			continue
		}
		m.health.RecordSuccess(ctx, entry.Name)
		return port.OperationResult{
			Success:    true,
			Source:     entry.Name,
			CampaignID: id,
			Message:    fmt.Sprintf("campaign created via %s", entry.Name),
		}
	}
	if !m.fallbackEnabled {
		return port.OperationResult{Success: false, Message: "all integrators failed"}
	}

	conn, ok := m.registry.Platform(draft.Platform)
	if !ok {
		return port.OperationResult{Success: false, Message: fmt.Sprintf("platform %s not available", draft.Platform)}
	}
	cctx, cancel := m.withTimeout(ctx)
	id, err := conn.CreateCampaign(cctx, draft)
	cancel()
	if err != nil {
		res := m.platformError(ctx, draft.Platform, "direct_"+draft.Platform, err)
		res.Message = "campaign creation failed on all paths: " + res.Message
		return res
	}
	return port.OperationResult{
		Success:    true,
		Source:     "direct_" + draft.Platform,
		CampaignID: id,
		Message:    fmt.Sprintf("campaign created via direct %s API", draft.Platform),
	}
}

// PauseCampaignWithFallback pauses the campaign through the first path
// that accepts it.
func (m *Middleware) PauseCampaignWithFallback(ctx context.Context, campaignID, platform, accountID string) port.OperationResult {
	for _, entry := range m.registry.Integrators() {
		if !entry.CanPause || m.health.InCooldown(ctx, entry.Name) {
			continue
		}
		pauser := entry.Integrator.(port.CampaignPauser)
		cctx, cancel := m.withTimeout(ctx)
		ok := pauser.PauseCampaign(cctx, campaignID)
		cancel()
		if !ok {
			m.health.RecordFailure(ctx, entry.Name)
			continue
		}
		m.health.RecordSuccess(ctx, entry.Name)
		return port.OperationResult{
			Success: true,
			Source:  entry.Name,
			Message: fmt.Sprintf("campaign paused via %s", entry.Name),
		}
	}
	if !m.fallbackEnabled {
		return port.OperationResult{Success: false, Message: "all integrators failed"}
	}

	conn, ok := m.registry.Platform(platform)
	if !ok {
		return port.OperationResult{Success: false, Message: fmt.Sprintf("platform %s not available", platform)}
	}
	source := "direct_" + platform
	for attempt := 0; attempt < maxPlatformAttempts; attempt++ {
		cctx, cancel := m.withTimeout(ctx)
		paused := conn.PauseCampaign(cctx, campaignID)
		cancel()
		if paused {
			m.health.RecordSuccess(ctx, source)
			return port.OperationResult{
				Success: true,
				Source:  source,
				Message: fmt.Sprintf("campaign paused via direct %s API", platform),
			}
		}
		if attempt < maxPlatformAttempts-1 {
			m.sleep(time.Duration(attempt+1) * backoffStep)
		}
	}
	m.health.RecordFailure(ctx, source)
	return port.OperationResult{Success: false, Message: fmt.Sprintf("campaign pause failed on all paths for %s", platform)}
}

// AggregatePerformanceData fetches performance independently from the
// integrator path and the direct platform path, persists each source's
// raw payload before normalizing it, and produces a quality-scored
// aggregate across sources.
func (m *Middleware) AggregatePerformanceData(ctx context.Context, campaignID, platform, accountID string, w domain.Window) port.AggregateResult {
	type source struct {
		name    string
		payload map[string]any
	}
	var sources []source
	if name, payload := m.collectIntegratorData(ctx, campaignID, w); payload != nil {
		sources = append(sources, source{name, payload})
	}
	if payload := m.collectPlatformData(ctx, campaignID, platform, w); payload != nil {
		sources = append(sources, source{"direct_" + platform, payload})
	}
	if len(sources) == 0 {
		return port.AggregateResult{Success: false, Message: "no performance data available from any source"}
	}

	agg := &domain.AggregatedPerformance{
		CampaignID: campaignID,
		Platform:   platform,
		Timestamp:  m.now(),
	}
	norms := make([]domain.NormalizedMetrics, 0, len(sources))
	for _, src := range sources {
		agg.Sources = append(agg.Sources, src.name)
		// raw snapshot first, unconditionally
		if err := m.metrics.SaveRaw(ctx, src.name, campaignID, platform, accountID, src.payload, w); err != nil {
			m.log.Error("raw metrics persistence failed",
				slog.String("source", src.name), slog.Any("error", err))
		}
		norm := m.metrics.Normalize(src.name, src.payload, campaignID, platform, accountID, w)
		if err := m.metrics.SaveNormalized(ctx, norm); err != nil {
			m.log.Error("normalized metrics persistence failed",
				slog.String("source", src.name), slog.Any("error", err))
		}
		norms = append(norms, norm)
		agg.TotalSpend += norm.Spend
		agg.TotalImpressions += norm.Impressions
		agg.TotalClicks += norm.Clicks
		agg.TotalConversions += norm.Conversions
	}

	agg.DataQualityScore = dataQualityScore(norms)
	if agg.TotalSpend > 0 {
		agg.AvgROAS = float64(agg.TotalConversions) / agg.TotalSpend
	}
	if agg.TotalImpressions > 0 {
		agg.AvgCTR = float64(agg.TotalClicks) / float64(agg.TotalImpressions) * 100
	}
	if agg.TotalClicks > 0 {
		agg.AvgCPC = agg.TotalSpend / float64(agg.TotalClicks)
	}
	return port.AggregateResult{Success: true, Data: agg}
}

func (m *Middleware) collectIntegratorData(ctx context.Context, campaignID string, w domain.Window) (string, map[string]any) {
	for _, entry := range m.registry.Integrators() {
		if m.health.InCooldown(ctx, entry.Name) {
			continue
		}
		cctx, cancel := m.withTimeout(ctx)
		payload, err := entry.Integrator.GetPerformanceMetrics(cctx, campaignID, w)
		cancel()
		if err != nil || len(payload) == 0 {
			m.health.RecordFailure(ctx, entry.Name)
			continue
		}
		m.health.RecordSuccess(ctx, entry.Name)
		return entry.Name, payload
	}
	return "", nil
}

func (m *Middleware) collectPlatformData(ctx context.Context, campaignID, platform string, w domain.Window) map[string]any {
	conn, ok := m.registry.Platform(platform)
	if !ok {
		return nil
	}
	source := "direct_" + platform
	if m.health.InCooldown(ctx, source) {
		return nil
	}
	for attempt := 0; attempt < maxPlatformAttempts; attempt++ {
		cctx, cancel := m.withTimeout(ctx)
		payload, err := conn.GetPerformanceMetrics(cctx, campaignID, w)
		cancel()
		if err != nil {
			var rle *port.RateLimitError
			if errors.As(err, &rle) {
				m.health.RecordRateLimit(ctx, source, m.rateLimitDelay(platform))
				m.sleep(m.rateLimitDelay(platform))
			} else {
				m.health.RecordFailure(ctx, source)
			}
			m.log.Warn("platform metrics fetch failed",
				slog.String("platform", platform), slog.Any("error", err))
			return nil
		}
		if len(payload) > 0 {
			m.health.RecordSuccess(ctx, source)
			return payload
		}
		if attempt < maxPlatformAttempts-1 {
			m.sleep(time.Duration(attempt+1) * backoffStep)
		}
	}
	return nil
}

// dataQualityScore rewards source agreement: no sources score 0, a
// single source scores a fixed 0.8, and two or more sources score
// 1 - average coefficient of variation of spend and impressions,
// clamped to [0, 1].
func dataQualityScore(norms []domain.NormalizedMetrics) float64 {
	switch len(norms) {
	case 0:
		return 0.0
	case 1:
		return 0.8
	}
	spends := make([]float64, len(norms))
	impressions := make([]float64, len(norms))
	for i, n := range norms {
		spends[i] = n.Spend
		impressions[i] = float64(n.Impressions)
	}
	score := 1.0 - (coefficientOfVariation(spends)+coefficientOfVariation(impressions))/2
	if score < 0 {
		return 0.0
	}
	if score > 1 {
		return 1.0
	}
	return score
}

// coefficientOfVariation is the population variance divided by the
// square of the mean; 0 for sets of size <= 1 or zero mean.
func coefficientOfVariation(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return variance / (mean * mean)
}
