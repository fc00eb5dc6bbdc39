package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"skupilot/internal/core/domain"
)

// Integrator connectors wrap media-buying aggregator services. They
// offer cross-platform budget and metrics operations as an alternative
// execution path to the direct platform APIs. Failures are reported as
// false or empty payloads so the middleware can move on to the next
// path without unwrapping errors.

// RevealBot supports budget updates, metrics and campaign creation.
type RevealBot struct {
	creds   Credentials
	baseURL string
	client  *http.Client
}

func NewRevealBot(creds Credentials) *RevealBot {
	return &RevealBot{
		creds:   creds,
		baseURL: "https://api.revealbot.com/v1",
		client:  newHTTPClient(),
	}
}

func (r *RevealBot) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + r.creds["api_key"]}
}

func (r *RevealBot) UpdateCampaignBudget(ctx context.Context, campaignID string, budget float64) (bool, error) {
	u := fmt.Sprintf("%s/campaigns/%s/budget", r.baseURL, campaignID)
	status, _, err := doJSON(ctx, r.client, http.MethodPost, u, r.headers(), map[string]any{"budget": budget})
	if err != nil {
		return false, nil
	}
	return status < 300, nil
}

func (r *RevealBot) GetPerformanceMetrics(ctx context.Context, campaignID string, w domain.Window) (map[string]any, error) {
	u := fmt.Sprintf("%s/campaigns/%s/metrics?start=%s&end=%s",
		r.baseURL, campaignID, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	status, body, err := doJSON(ctx, r.client, http.MethodGet, u, r.headers(), nil)
	if err != nil || status >= 300 {
		return nil, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil
	}
	return payload, nil
}

// CreateCampaign makes RevealBot satisfy the CampaignCreator
// capability.
func (r *RevealBot) CreateCampaign(ctx context.Context, draft domain.CampaignDraft) (string, error) {
	payload := map[string]any{
		"name":     draft.Name,
		"platform": draft.Platform,
		"budget":   draft.Budget,
		"status":   "paused",
	}
	u := fmt.Sprintf("%s/campaigns", r.baseURL)
	status, body, err := doJSON(ctx, r.client, http.MethodPost, u, r.headers(), payload)
	if err != nil || status >= 300 {
		return "", nil
	}
	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", nil
	}
	return result.ID, nil
}

// ValidateCredentials is a shallow check used at registration time.
func (r *RevealBot) ValidateCredentials() bool {
	return r.creds.hasToken()
}

// AdRoll supports budget updates and metrics only.
type AdRoll struct {
	creds   Credentials
	baseURL string
	client  *http.Client
}

func NewAdRoll(creds Credentials) *AdRoll {
	return &AdRoll{
		creds:   creds,
		baseURL: "https://services.adroll.com/api/v1",
		client:  newHTTPClient(),
	}
}

func (a *AdRoll) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.creds["access_token"]}
}

func (a *AdRoll) UpdateCampaignBudget(ctx context.Context, campaignID string, budget float64) (bool, error) {
	u := fmt.Sprintf("%s/campaign/%s/budget", a.baseURL, campaignID)
	status, _, err := doJSON(ctx, a.client, http.MethodPost, u, a.headers(), map[string]any{"budget": budget})
	if err != nil {
		return false, nil
	}
	return status < 300, nil
}

func (a *AdRoll) GetPerformanceMetrics(ctx context.Context, campaignID string, w domain.Window) (map[string]any, error) {
	u := fmt.Sprintf("%s/campaign/%s/metrics?start=%s&end=%s",
		a.baseURL, campaignID, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	status, body, err := doJSON(ctx, a.client, http.MethodGet, u, a.headers(), nil)
	if err != nil || status >= 300 {
		return nil, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil
	}
	return payload, nil
}

// ValidateCredentials is a shallow check used at registration time.
func (a *AdRoll) ValidateCredentials() bool {
	return a.creds.hasToken()
}
