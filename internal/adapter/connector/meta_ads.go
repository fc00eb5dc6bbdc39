package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

const metaCents = 100

// MetaAds talks to the Meta Marketing API. Budgets on the wire are in
// cents.
type MetaAds struct {
	creds   Credentials
	baseURL string
	client  *http.Client
	now     port.Clock
}

func NewMetaAds(creds Credentials) *MetaAds {
	return &MetaAds{
		creds:   creds,
		baseURL: "https://graph.facebook.com/v18.0",
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

func (m *MetaAds) Name() string { return domain.PlatformMetaAds }

func (m *MetaAds) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + m.creds["access_token"]}
}

func (m *MetaAds) GetCampaigns(ctx context.Context, accountID string) ([]domain.CampaignSummary, error) {
	params := url.Values{}
	params.Set("fields", "id,name,status,objective,daily_budget,lifetime_budget")
	params.Set("limit", "100")
	u := fmt.Sprintf("%s/act_%s/campaigns?%s", m.baseURL, accountID, params.Encode())
	status, body, err := doJSON(ctx, m.client, http.MethodGet, u, m.headers(), nil)
	if err != nil {
		return nil, &port.IntegrationError{Platform: m.Name(), Msg: "fetch campaigns", Err: err}
	}
	if err := statusErr(m.Name(), status, body); err != nil {
		return nil, err
	}
	var data struct {
		Data []struct {
			ID             string      `json:"id"`
			Name           string      `json:"name"`
			Status         string      `json:"status"`
			Objective      string      `json:"objective"`
			DailyBudget    json.Number `json:"daily_budget"`
			LifetimeBudget json.Number `json:"lifetime_budget"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &port.IntegrationError{Platform: m.Name(), Msg: "decode campaigns", Err: err}
	}
	campaigns := make([]domain.CampaignSummary, 0, len(data.Data))
	for _, c := range data.Data {
		cents, _ := c.DailyBudget.Float64()
		if cents == 0 {
			cents, _ = c.LifetimeBudget.Float64()
		}
		campaigns = append(campaigns, domain.CampaignSummary{
			ID:       c.ID,
			Name:     c.Name,
			Status:   c.Status,
			Type:     c.Objective,
			Budget:   cents / metaCents,
			Platform: m.Name(),
		})
	}
	return campaigns, nil
}

func (m *MetaAds) CreateCampaign(ctx context.Context, draft domain.CampaignDraft) (string, error) {
	payload := map[string]any{
		"name":      draft.Name,
		"objective": mapMetaObjective(draft.Objective),
		// new campaigns start paused
		"status":                "PAUSED",
		"special_ad_categories": []string{},
	}
	if draft.BudgetType == "lifetime" {
		payload["lifetime_budget"] = int64(draft.Budget * metaCents)
	} else {
		payload["daily_budget"] = int64(draft.Budget * metaCents)
	}
	u := fmt.Sprintf("%s/act_%s/campaigns", m.baseURL, draft.AccountID)
	status, body, err := doJSON(ctx, m.client, http.MethodPost, u, m.headers(), payload)
	if err != nil {
		return "", &port.IntegrationError{Platform: m.Name(), Msg: "create campaign", Err: err}
	}
	if err := statusErr(m.Name(), status, body); err != nil {
		return "", err
	}
	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.ID == "" {
		return "", &port.IntegrationError{Platform: m.Name(), Msg: "decode create response", Err: err}
	}
	return result.ID, nil
}

func (m *MetaAds) UpdateCampaignBudget(ctx context.Context, campaignID string, budget float64) (bool, error) {
	payload := map[string]any{"daily_budget": int64(budget * metaCents)}
	u := fmt.Sprintf("%s/%s", m.baseURL, campaignID)
	status, body, err := doJSON(ctx, m.client, http.MethodPost, u, m.headers(), payload)
	if err != nil {
		return false, nil
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusUnauthorized:
		return false, statusErr(m.Name(), status, body)
	}
	return status == http.StatusOK, nil
}

func (m *MetaAds) GetPerformanceMetrics(ctx context.Context, campaignID string, w domain.Window) (map[string]any, error) {
	params := url.Values{}
	params.Set("fields", "spend,impressions,clicks,actions")
	params.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		w.Start.Format("2006-01-02"), w.End.Format("2006-01-02")))
	u := fmt.Sprintf("%s/%s/insights?%s", m.baseURL, campaignID, params.Encode())
	status, body, err := doJSON(ctx, m.client, http.MethodGet, u, m.headers(), nil)
	if err != nil {
		return nil, &port.IntegrationError{Platform: m.Name(), Msg: "fetch insights", Err: err}
	}
	if err := statusErr(m.Name(), status, body); err != nil {
		return nil, err
	}
	var data struct {
		Data []struct {
			Spend       json.Number `json:"spend"`
			Impressions json.Number `json:"impressions"`
			Clicks      json.Number `json:"clicks"`
			Actions     []struct {
				ActionType string      `json:"action_type"`
				Value      json.Number `json:"value"`
			} `json:"actions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &port.IntegrationError{Platform: m.Name(), Msg: "decode insights", Err: err}
	}
	var spend float64
	var impressions, clicks, conversions int64
	for _, insight := range data.Data {
		s, _ := insight.Spend.Float64() // Meta reports spend in currency units
		spend += s
		imp, _ := insight.Impressions.Int64()
		impressions += imp
		clk, _ := insight.Clicks.Int64()
		clicks += clk
		for _, a := range insight.Actions {
			if a.ActionType == "purchase" || a.ActionType == "offsite_conversion" {
				v, _ := a.Value.Int64()
				conversions += v
			}
		}
	}
	return canonicalMetrics(m.Name(), spend, impressions, clicks, conversions, m.now()), nil
}

func (m *MetaAds) PauseCampaign(ctx context.Context, campaignID string) bool {
	return m.setStatus(ctx, campaignID, "PAUSED")
}

func (m *MetaAds) ActivateCampaign(ctx context.Context, campaignID string) bool {
	return m.setStatus(ctx, campaignID, "ACTIVE")
}

func (m *MetaAds) setStatus(ctx context.Context, campaignID, state string) bool {
	u := fmt.Sprintf("%s/%s", m.baseURL, campaignID)
	status, _, err := doJSON(ctx, m.client, http.MethodPost, u, m.headers(), map[string]string{"status": state})
	return err == nil && status == http.StatusOK
}

func (m *MetaAds) ValidateCredentials() bool { return m.creds.hasToken() }

func mapMetaObjective(objective string) string {
	switch strings.ToLower(objective) {
	case "conversions":
		return "CONVERSIONS"
	case "awareness":
		return "BRAND_AWARENESS"
	case "leads":
		return "LEAD_GENERATION"
	default:
		return "OUTCOME_TRAFFIC"
	}
}
