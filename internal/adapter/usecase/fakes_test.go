package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- repositories ----

type fakeSKURepo struct {
	skus    map[string]*domain.SKU
	listErr error

	budgetDeltas map[string]float64
}

func (f *fakeSKURepo) GetByID(_ context.Context, id string) (*domain.SKU, error) {
	return f.skus[id], nil
}

func (f *fakeSKURepo) AdjustRemainingBudget(_ context.Context, id string, delta float64) (bool, error) {
	if f.budgetDeltas == nil {
		f.budgetDeltas = map[string]float64{}
	}
	f.budgetDeltas[id] += delta
	return true, nil
}

func (f *fakeSKURepo) ListActive(_ context.Context) ([]domain.SKU, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.SKU
	for _, s := range f.skus {
		if s.Status == domain.SKUStatusActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeCampaignRepo struct {
	campaigns []domain.Campaign

	budgetUpdates map[string]float64
	statusUpdates map[string]string
	updateErr     error
}

func newFakeCampaignRepo(campaigns ...domain.Campaign) *fakeCampaignRepo {
	return &fakeCampaignRepo{
		campaigns:     campaigns,
		budgetUpdates: map[string]float64{},
		statusUpdates: map[string]string{},
	}
}

func (f *fakeCampaignRepo) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	for i := range f.campaigns {
		if f.campaigns[i].ID == id {
			c := f.campaigns[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCampaignRepo) GetBySKU(_ context.Context, skuID string) ([]domain.Campaign, error) {
	var out []domain.Campaign
	for _, c := range f.campaigns {
		if c.SKUID == skuID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCampaignRepo) UpdateBudget(_ context.Context, id string, budget float64) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	f.budgetUpdates[id] = budget
	return true, nil
}

func (f *fakeCampaignRepo) UpdateStatus(_ context.Context, id, status string) (bool, error) {
	f.statusUpdates[id] = status
	return true, nil
}

type fakeMetricsRepo struct {
	aggregates []domain.CampaignAggregate
	raws       []domain.RawIntegrationMetrics
	norms      []domain.NormalizedMetrics
}

func (f *fakeMetricsRepo) PerformanceBySKU(_ context.Context, _ string, _ domain.Window) ([]domain.CampaignAggregate, error) {
	return f.aggregates, nil
}

func (f *fakeMetricsRepo) SaveRaw(_ context.Context, raw domain.RawIntegrationMetrics) error {
	f.raws = append(f.raws, raw)
	return nil
}

func (f *fakeMetricsRepo) SaveNormalized(_ context.Context, m domain.NormalizedMetrics) error {
	f.norms = append(f.norms, m)
	return nil
}

type fakeDecisionLog struct {
	records []domain.IntelligenceDecision
}

func (f *fakeDecisionLog) Append(_ context.Context, d domain.IntelligenceDecision) error {
	f.records = append(f.records, d)
	return nil
}

// ---- orchestrator ----

type fakeOrchestrator struct {
	budgetCalls []string
	pauseCalls  []string
	failFor     map[string]bool
}

func (f *fakeOrchestrator) ExecuteBudgetChange(_ context.Context, campaignID string, _ float64, _, _ string) port.OperationResult {
	f.budgetCalls = append(f.budgetCalls, campaignID)
	if f.failFor[campaignID] {
		return port.OperationResult{Success: false, Message: "all integrators failed"}
	}
	return port.OperationResult{Success: true, Source: "revealbot", Message: "budget updated via revealbot"}
}

func (f *fakeOrchestrator) CreateCampaignWithFallback(_ context.Context, _ domain.CampaignDraft) port.OperationResult {
	return port.OperationResult{Success: true, Source: "revealbot"}
}

func (f *fakeOrchestrator) PauseCampaignWithFallback(_ context.Context, campaignID, _, _ string) port.OperationResult {
	f.pauseCalls = append(f.pauseCalls, campaignID)
	return port.OperationResult{Success: true, Source: "direct_meta_ads"}
}

func (f *fakeOrchestrator) AggregatePerformanceData(_ context.Context, _, _, _ string, _ domain.Window) port.AggregateResult {
	return port.AggregateResult{Success: false, Message: "not implemented"}
}

// ---- connectors ----

// stubIntegrator implements port.Integrator with optional create/pause
// capabilities toggled by embedding wrappers below.
type stubIntegrator struct {
	budgetOK   bool
	budgetErr  error
	payload    map[string]any
	budgetHits int
}

func (s *stubIntegrator) UpdateCampaignBudget(_ context.Context, _ string, _ float64) (bool, error) {
	s.budgetHits++
	return s.budgetOK, s.budgetErr
}

func (s *stubIntegrator) GetPerformanceMetrics(_ context.Context, _ string, _ domain.Window) (map[string]any, error) {
	return s.payload, nil
}

// creatingIntegrator adds the CampaignCreator capability.
type creatingIntegrator struct {
	stubIntegrator
	createID string
}

func (c *creatingIntegrator) CreateCampaign(_ context.Context, _ domain.CampaignDraft) (string, error) {
	return c.createID, nil
}

// stubPlatform implements port.PlatformConnector through overridable
// function fields.
type stubPlatform struct {
	name        string
	updateFn    func(attempt int) (bool, error)
	metricsFn   func() (map[string]any, error)
	pauseOK     bool
	updateHits  int
	metricsHits int
	pauseHits   int
}

func (s *stubPlatform) Name() string { return s.name }

func (s *stubPlatform) GetCampaigns(_ context.Context, _ string) ([]domain.CampaignSummary, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPlatform) CreateCampaign(_ context.Context, _ domain.CampaignDraft) (string, error) {
	return "ext-1", nil
}

func (s *stubPlatform) UpdateCampaignBudget(_ context.Context, _ string, _ float64) (bool, error) {
	s.updateHits++
	if s.updateFn == nil {
		return true, nil
	}
	return s.updateFn(s.updateHits)
}

func (s *stubPlatform) GetPerformanceMetrics(_ context.Context, _ string, _ domain.Window) (map[string]any, error) {
	s.metricsHits++
	if s.metricsFn == nil {
		return nil, nil
	}
	return s.metricsFn()
}

func (s *stubPlatform) PauseCampaign(_ context.Context, _ string) bool {
	s.pauseHits++
	return s.pauseOK
}

func (s *stubPlatform) ActivateCampaign(_ context.Context, _ string) bool { return true }

func (s *stubPlatform) ValidateCredentials() bool { return true }
