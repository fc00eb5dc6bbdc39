package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

func testWindow() domain.Window {
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	return domain.Window{Start: end.AddDate(0, 0, -7), End: end}
}

func TestGoogleAdsMicrosConversion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"metrics":{"costMicros":"12500000","impressions":"1000","clicks":"50","conversions":"5"}},
			{"metrics":{"costMicros":"2500000","impressions":"500","clicks":"10","conversions":"1"}}
		]}`))
	}))
	defer server.Close()

	g := NewGoogleAds(Credentials{"api_key": "k", "client_id": "123"})
	g.baseURL = server.URL

	metrics, err := g.GetPerformanceMetrics(context.Background(), "c1", testWindow())
	require.NoError(t, err)
	require.InDelta(t, 15.0, metrics["spend"], 1e-9) // 15_000_000 micros
	require.Equal(t, int64(1500), metrics["impressions"])
	require.Equal(t, int64(60), metrics["clicks"])
	require.Equal(t, int64(6), metrics["conversions"])
	require.InDelta(t, 4.0, metrics["ctr"], 1e-9)
	require.InDelta(t, 0.25, metrics["cpc"], 1e-9)
}

func TestGoogleAdsCampaignBudgetFromMicros(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"campaign":{"id":"11","name":"a","status":"ENABLED"},
			"campaignBudget":{"amountMicros":"250000000"}}]}`))
	}))
	defer server.Close()

	g := NewGoogleAds(Credentials{"api_key": "k"})
	g.baseURL = server.URL

	campaigns, err := g.GetCampaigns(context.Background(), "acc")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.InDelta(t, 250.0, campaigns[0].Budget, 1e-9)
}

func TestMetaAdsCentsConversion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"1","name":"a","status":"ACTIVE","daily_budget":"5000"}]}`))
	}))
	defer server.Close()

	m := NewMetaAds(Credentials{"access_token": "t"})
	m.baseURL = server.URL

	campaigns, err := m.GetCampaigns(context.Background(), "acc")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.InDelta(t, 50.0, campaigns[0].Budget, 1e-9) // 5000 cents
}

func TestMetaAdsConversionsFromActions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"spend":"42.50","impressions":"2000","clicks":"80",
			"actions":[{"action_type":"purchase","value":"3"},
			           {"action_type":"link_click","value":"80"},
			           {"action_type":"offsite_conversion","value":"2"}]}]}`))
	}))
	defer server.Close()

	m := NewMetaAds(Credentials{"access_token": "t"})
	m.baseURL = server.URL

	metrics, err := m.GetPerformanceMetrics(context.Background(), "c1", testWindow())
	require.NoError(t, err)
	require.InDelta(t, 42.50, metrics["spend"], 1e-9)
	require.Equal(t, int64(5), metrics["conversions"]) // purchase + offsite only
}

func TestTikTokAdsNoUnitConversion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"metrics":{"spend":"99.90","impressions":"10000","clicks":"300","conversions":"12"}}}`))
	}))
	defer server.Close()

	tk := NewTikTokAds(Credentials{"access_token": "t", "advertiser_id": "adv"})
	tk.baseURL = server.URL

	metrics, err := tk.GetPerformanceMetrics(context.Background(), "c1", testWindow())
	require.NoError(t, err)
	require.InDelta(t, 99.90, metrics["spend"], 1e-9)
	require.Equal(t, int64(10000), metrics["impressions"])
}

func TestLinkedInAdsCentsConversion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements":[{"id":77,"name":"b2b","status":"ACTIVE",
			"dailyBudget":{"amount":"12345"}}]}`))
	}))
	defer server.Close()

	l := NewLinkedInAds(Credentials{"access_token": "t"})
	l.baseURL = server.URL

	campaigns, err := l.GetCampaigns(context.Background(), "acc")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.InDelta(t, 123.45, campaigns[0].Budget, 1e-9)
}

func TestRateLimitAndAuthMapping(t *testing.T) {
	status := http.StatusTooManyRequests
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	g := NewGoogleAds(Credentials{"api_key": "k", "client_id": "c"})
	g.baseURL = server.URL

	_, err := g.GetPerformanceMetrics(context.Background(), "c1", testWindow())
	var rle *port.RateLimitError
	require.ErrorAs(t, err, &rle)
	require.Equal(t, domain.PlatformGoogleAds, rle.Platform)

	status = http.StatusUnauthorized
	_, err = g.GetPerformanceMetrics(context.Background(), "c1", testWindow())
	var authErr *port.AuthenticationError
	require.ErrorAs(t, err, &authErr)

	// budget updates surface auth/rate-limit but not ordinary failures
	status = http.StatusInternalServerError
	ok, err := g.UpdateCampaignBudget(context.Background(), "c1", 100)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCreateCampaignAlwaysPaused(t *testing.T) {
	var gotStatus string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := jsonDecode(r, &payload); err == nil {
			gotStatus, _ = payload["status"].(string)
		}
		w.Write([]byte(`{"id":"new-1"}`))
	}))
	defer server.Close()

	m := NewMetaAds(Credentials{"access_token": "t"})
	m.baseURL = server.URL

	id, err := m.CreateCampaign(context.Background(), domain.CampaignDraft{
		Name: "c", AccountID: "a", Budget: 10, Objective: "traffic",
	})
	require.NoError(t, err)
	require.Equal(t, "new-1", id)
	require.Equal(t, "PAUSED", gotStatus)
}

func TestValidateCredentials(t *testing.T) {
	require.True(t, NewMetaAds(Credentials{"access_token": "t"}).ValidateCredentials())
	require.True(t, NewGoogleAds(Credentials{"api_key": "k"}).ValidateCredentials())
	require.False(t, NewTikTokAds(Credentials{"advertiser_id": "only"}).ValidateCredentials())
	require.False(t, NewLinkedInAds(Credentials{}).ValidateCredentials())
}

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func TestPauseSwallowsTransportErrors(t *testing.T) {
	g := NewGoogleAds(Credentials{"api_key": "k", "client_id": "c"})
	g.baseURL = "http://127.0.0.1:1" // nothing listens here
	require.False(t, g.PauseCampaign(context.Background(), "c1"))
	require.False(t, g.ActivateCampaign(context.Background(), "c1"))
}
