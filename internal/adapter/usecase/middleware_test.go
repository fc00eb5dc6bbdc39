package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skupilot/internal/config/configs"
	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

func newTestMiddleware(t *testing.T, registry *port.Registry, fallback bool) (*Middleware, *fakeMetricsRepo) {
	t.Helper()
	repo := &fakeMetricsRepo{}
	cfg := configs.Connectors{FallbackEnabled: fallback, CallTimeout: time.Second}
	m := NewMiddleware(registry, NewMetricsService(repo), nil, cfg, discardLogger())
	m.sleep = func(time.Duration) {} // no real backoff in tests
	return m, repo
}

func TestBudgetChangeFirstIntegratorWins(t *testing.T) {
	registry := port.NewRegistry()
	first := &stubIntegrator{budgetOK: true}
	second := &stubIntegrator{budgetOK: true}
	registry.RegisterIntegrator("revealbot", first)
	registry.RegisterIntegrator("adroll", second)

	m, _ := newTestMiddleware(t, registry, true)
	res := m.ExecuteBudgetChange(context.Background(), "c1", 500, domain.PlatformMetaAds, "acc")

	require.True(t, res.Success)
	require.Equal(t, "revealbot", res.Source)
	require.Equal(t, 1, first.budgetHits)
	require.Zero(t, second.budgetHits)
}

func TestBudgetChangeFallsBackToPlatform(t *testing.T) {
	registry := port.NewRegistry()
	registry.RegisterIntegrator("revealbot", &stubIntegrator{budgetOK: false})
	platform := &stubPlatform{name: domain.PlatformMetaAds}
	registry.RegisterPlatform(domain.PlatformMetaAds, platform)

	m, _ := newTestMiddleware(t, registry, true)
	res := m.ExecuteBudgetChange(context.Background(), "c1", 500, domain.PlatformMetaAds, "acc")

	require.True(t, res.Success)
	require.Equal(t, "direct_meta_ads", res.Source)
}

func TestBudgetChangeFallbackDisabledSkipsPlatform(t *testing.T) {
	registry := port.NewRegistry()
	registry.RegisterIntegrator("revealbot", &stubIntegrator{budgetOK: false})
	platform := &stubPlatform{name: domain.PlatformMetaAds}
	registry.RegisterPlatform(domain.PlatformMetaAds, platform)

	m, _ := newTestMiddleware(t, registry, false)
	res := m.ExecuteBudgetChange(context.Background(), "c1", 500, domain.PlatformMetaAds, "acc")

	require.False(t, res.Success)
	require.Zero(t, platform.updateHits)
}

func TestBudgetChangeRetriesTransientFalseReturns(t *testing.T) {
	registry := port.NewRegistry()
	platform := &stubPlatform{
		name: domain.PlatformGoogleAds,
		updateFn: func(attempt int) (bool, error) {
			return attempt == 3, nil // succeed on the final attempt
		},
	}
	registry.RegisterPlatform(domain.PlatformGoogleAds, platform)

	m, _ := newTestMiddleware(t, registry, true)
	res := m.ExecuteBudgetChange(context.Background(), "c1", 500, domain.PlatformGoogleAds, "acc")

	require.True(t, res.Success)
	require.Equal(t, 3, platform.updateHits)
}

func TestBudgetChangeRateLimitShortCircuits(t *testing.T) {
	registry := port.NewRegistry()
	platform := &stubPlatform{
		name: domain.PlatformGoogleAds,
		updateFn: func(int) (bool, error) {
			return false, &port.RateLimitError{Platform: domain.PlatformGoogleAds}
		},
	}
	registry.RegisterPlatform(domain.PlatformGoogleAds, platform)

	m, _ := newTestMiddleware(t, registry, true)
	var slept []time.Duration
	m.sleep = func(d time.Duration) { slept = append(slept, d) }

	res := m.ExecuteBudgetChange(context.Background(), "c1", 500, domain.PlatformGoogleAds, "acc")

	require.False(t, res.Success)
	require.Contains(t, res.Message, "rate limited on google_ads")
	require.Equal(t, 1, platform.updateHits) // no further attempts
	require.Equal(t, []time.Duration{time.Second}, slept)
}

func TestBudgetChangeTotalFailureCombinesReasons(t *testing.T) {
	registry := port.NewRegistry()
	registry.RegisterIntegrator("revealbot", &stubIntegrator{budgetOK: false})
	platform := &stubPlatform{
		name:     domain.PlatformMetaAds,
		updateFn: func(int) (bool, error) { return false, nil },
	}
	registry.RegisterPlatform(domain.PlatformMetaAds, platform)

	m, _ := newTestMiddleware(t, registry, true)
	res := m.ExecuteBudgetChange(context.Background(), "c1", 500, domain.PlatformMetaAds, "acc")

	require.False(t, res.Success)
	require.Contains(t, res.Message, "all integrators failed")
	require.Contains(t, res.Message, "direct meta_ads API failed")
}

func TestCreateCampaignUsesCapableIntegratorOnly(t *testing.T) {
	registry := port.NewRegistry()
	registry.RegisterIntegrator("adroll", &stubIntegrator{}) // no create capability
	registry.RegisterIntegrator("revealbot", &creatingIntegrator{createID: "ext-9"})

	m, _ := newTestMiddleware(t, registry, true)
	res := m.CreateCampaignWithFallback(context.Background(), domain.CampaignDraft{
		Name: "c", Platform: domain.PlatformMetaAds, AccountID: "acc", Budget: 100,
	})

	require.True(t, res.Success)
	require.Equal(t, "revealbot", res.Source)
	require.Equal(t, "ext-9", res.CampaignID)
}

func TestPauseFallsBackToPlatform(t *testing.T) {
	registry := port.NewRegistry()
	registry.RegisterIntegrator("revealbot", &stubIntegrator{}) // no pause capability
	platform := &stubPlatform{name: domain.PlatformMetaAds, pauseOK: true}
	registry.RegisterPlatform(domain.PlatformMetaAds, platform)

	m, _ := newTestMiddleware(t, registry, true)
	res := m.PauseCampaignWithFallback(context.Background(), "c1", domain.PlatformMetaAds, "acc")

	require.True(t, res.Success)
	require.Equal(t, "direct_meta_ads", res.Source)
	require.Equal(t, 1, platform.pauseHits)
}

func TestAggregateDualSource(t *testing.T) {
	registry := port.NewRegistry()
	registry.RegisterIntegrator("revealbot", &stubIntegrator{
		payload: map[string]any{"spend": 100.0, "impressions": 1000, "clicks": 50, "conversions": 10},
	})
	platform := &stubPlatform{
		name: domain.PlatformMetaAds,
		metricsFn: func() (map[string]any, error) {
			return map[string]any{"spend": 100.0, "impressions": 1000, "clicks": 50, "conversions": 10}, nil
		},
	}
	registry.RegisterPlatform(domain.PlatformMetaAds, platform)

	m, repo := newTestMiddleware(t, registry, true)
	res := m.AggregatePerformanceData(context.Background(), "c1", domain.PlatformMetaAds, "acc", normWindow())

	require.True(t, res.Success)
	require.Equal(t, []string{"revealbot", "direct_meta_ads"}, res.Data.Sources)
	require.InDelta(t, 200.0, res.Data.TotalSpend, 1e-9)
	require.Equal(t, int64(2000), res.Data.TotalImpressions)
	require.InDelta(t, 0.1, res.Data.AvgROAS, 1e-9) // 20/200
	require.InDelta(t, 5.0, res.Data.AvgCTR, 1e-9)  // 100/2000*100
	require.InDelta(t, 2.0, res.Data.AvgCPC, 1e-9)  // 200/100
	// identical sources agree perfectly
	require.InDelta(t, 1.0, res.Data.DataQualityScore, 1e-9)
	// raw persisted before normalized, one pair per source
	require.Len(t, repo.raws, 2)
	require.Len(t, repo.norms, 2)
}

func TestAggregateSingleSourceScore(t *testing.T) {
	registry := port.NewRegistry()
	registry.RegisterIntegrator("revealbot", &stubIntegrator{
		payload: map[string]any{"spend": 10.0, "impressions": 100},
	})

	m, _ := newTestMiddleware(t, registry, true)
	res := m.AggregatePerformanceData(context.Background(), "c1", domain.PlatformMetaAds, "acc", normWindow())

	require.True(t, res.Success)
	require.InDelta(t, 0.8, res.Data.DataQualityScore, 1e-9)
}

func TestAggregateNoSources(t *testing.T) {
	m, _ := newTestMiddleware(t, port.NewRegistry(), true)
	res := m.AggregatePerformanceData(context.Background(), "c1", domain.PlatformMetaAds, "acc", normWindow())
	require.False(t, res.Success)
	require.Contains(t, res.Message, "no performance data")
}

func TestAggregateZeroTotalsNoDivisionByZero(t *testing.T) {
	registry := port.NewRegistry()
	registry.RegisterIntegrator("revealbot", &stubIntegrator{
		payload: map[string]any{"vendor_status": "ok"}, // no numeric fields at all
	})

	m, _ := newTestMiddleware(t, registry, true)
	res := m.AggregatePerformanceData(context.Background(), "c1", domain.PlatformMetaAds, "acc", normWindow())

	require.True(t, res.Success)
	require.Zero(t, res.Data.AvgROAS)
	require.Zero(t, res.Data.AvgCTR)
	require.Zero(t, res.Data.AvgCPC)
}

func TestDataQualityScore(t *testing.T) {
	require.Zero(t, dataQualityScore(nil))
	require.InDelta(t, 0.8, dataQualityScore([]domain.NormalizedMetrics{{Spend: 5}}), 1e-9)

	identical := []domain.NormalizedMetrics{
		{Spend: 100, Impressions: 1000},
		{Spend: 100, Impressions: 1000},
	}
	require.InDelta(t, 1.0, dataQualityScore(identical), 1e-9)

	divergent := []domain.NormalizedMetrics{
		{Spend: 100, Impressions: 1000},
		{Spend: 900, Impressions: 9000},
	}
	score := dataQualityScore(divergent)
	require.GreaterOrEqual(t, score, 0.0)
	require.Less(t, score, 1.0)
}

func TestCoefficientOfVariation(t *testing.T) {
	require.Zero(t, coefficientOfVariation(nil))
	require.Zero(t, coefficientOfVariation([]float64{42}))
	require.Zero(t, coefficientOfVariation([]float64{0, 0}))
	// values 10 and 30: mean 20, population variance 100, CV 0.25
	require.InDelta(t, 0.25, coefficientOfVariation([]float64{10, 30}), 1e-9)
}
