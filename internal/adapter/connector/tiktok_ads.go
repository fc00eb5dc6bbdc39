package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

// TikTokAds talks to the TikTok Business API. Budgets are already
// currency floats on the wire, so no unit conversion is needed.
type TikTokAds struct {
	creds   Credentials
	baseURL string
	client  *http.Client
	now     port.Clock
}

func NewTikTokAds(creds Credentials) *TikTokAds {
	return &TikTokAds{
		creds:   creds,
		baseURL: "https://business-api.tiktok.com/open_api/v1.3",
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

func (t *TikTokAds) Name() string { return domain.PlatformTikTokAds }

func (t *TikTokAds) headers() map[string]string {
	return map[string]string{"Access-Token": t.creds["access_token"]}
}

func (t *TikTokAds) GetCampaigns(ctx context.Context, accountID string) ([]domain.CampaignSummary, error) {
	params := url.Values{}
	params.Set("advertiser_id", t.advertiserID(accountID))
	params.Set("page_size", "100")
	u := fmt.Sprintf("%s/campaign/get/?%s", t.baseURL, params.Encode())
	status, body, err := doJSON(ctx, t.client, http.MethodGet, u, t.headers(), nil)
	if err != nil {
		return nil, &port.IntegrationError{Platform: t.Name(), Msg: "fetch campaigns", Err: err}
	}
	if err := statusErr(t.Name(), status, body); err != nil {
		return nil, err
	}
	var data struct {
		Data struct {
			List []struct {
				CampaignID      string      `json:"campaign_id"`
				CampaignName    string      `json:"campaign_name"`
				OperationStatus string      `json:"operation_status"`
				ObjectiveType   string      `json:"objective_type"`
				Budget          json.Number `json:"budget"`
			} `json:"list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &port.IntegrationError{Platform: t.Name(), Msg: "decode campaigns", Err: err}
	}
	campaigns := make([]domain.CampaignSummary, 0, len(data.Data.List))
	for _, c := range data.Data.List {
		budget, _ := c.Budget.Float64()
		campaigns = append(campaigns, domain.CampaignSummary{
			ID:       c.CampaignID,
			Name:     c.CampaignName,
			Status:   c.OperationStatus,
			Type:     c.ObjectiveType,
			Budget:   budget,
			Platform: t.Name(),
		})
	}
	return campaigns, nil
}

func (t *TikTokAds) CreateCampaign(ctx context.Context, draft domain.CampaignDraft) (string, error) {
	payload := map[string]any{
		"advertiser_id":  t.advertiserID(draft.AccountID),
		"campaign_name":  draft.Name,
		"objective_type": draft.Objective,
		"budget":         draft.Budget,
		// new campaigns start paused
		"operation_status": "DISABLE",
	}
	u := fmt.Sprintf("%s/campaign/create/", t.baseURL)
	status, body, err := doJSON(ctx, t.client, http.MethodPost, u, t.headers(), payload)
	if err != nil {
		return "", &port.IntegrationError{Platform: t.Name(), Msg: "create campaign", Err: err}
	}
	if err := statusErr(t.Name(), status, body); err != nil {
		return "", err
	}
	var result struct {
		Data struct {
			CampaignID string `json:"campaign_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.Data.CampaignID == "" {
		return "", &port.IntegrationError{Platform: t.Name(), Msg: "decode create response", Err: err}
	}
	return result.Data.CampaignID, nil
}

func (t *TikTokAds) UpdateCampaignBudget(ctx context.Context, campaignID string, budget float64) (bool, error) {
	payload := map[string]any{
		"advertiser_id": t.creds["advertiser_id"],
		"campaign_id":   campaignID,
		"budget":        budget,
	}
	u := fmt.Sprintf("%s/campaign/update/", t.baseURL)
	status, body, err := doJSON(ctx, t.client, http.MethodPost, u, t.headers(), payload)
	if err != nil {
		return false, nil
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusUnauthorized:
		return false, statusErr(t.Name(), status, body)
	}
	return status == http.StatusOK, nil
}

func (t *TikTokAds) GetPerformanceMetrics(ctx context.Context, campaignID string, w domain.Window) (map[string]any, error) {
	params := url.Values{}
	params.Set("advertiser_id", t.creds["advertiser_id"])
	params.Set("campaign_id", campaignID)
	params.Set("start_date", w.Start.Format("2006-01-02"))
	params.Set("end_date", w.End.Format("2006-01-02"))
	u := fmt.Sprintf("%s/report/campaign/get/?%s", t.baseURL, params.Encode())
	status, body, err := doJSON(ctx, t.client, http.MethodGet, u, t.headers(), nil)
	if err != nil {
		return nil, &port.IntegrationError{Platform: t.Name(), Msg: "fetch report", Err: err}
	}
	if err := statusErr(t.Name(), status, body); err != nil {
		return nil, err
	}
	var data struct {
		Data struct {
			Metrics struct {
				Spend       json.Number `json:"spend"`
				Impressions json.Number `json:"impressions"`
				Clicks      json.Number `json:"clicks"`
				Conversions json.Number `json:"conversions"`
			} `json:"metrics"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &port.IntegrationError{Platform: t.Name(), Msg: "decode report", Err: err}
	}
	spend, _ := data.Data.Metrics.Spend.Float64()
	impressions, _ := data.Data.Metrics.Impressions.Int64()
	clicks, _ := data.Data.Metrics.Clicks.Int64()
	conversions, _ := data.Data.Metrics.Conversions.Int64()
	return canonicalMetrics(t.Name(), spend, impressions, clicks, conversions, t.now()), nil
}

func (t *TikTokAds) PauseCampaign(ctx context.Context, campaignID string) bool {
	return t.setStatus(ctx, campaignID, "DISABLE")
}

func (t *TikTokAds) ActivateCampaign(ctx context.Context, campaignID string) bool {
	return t.setStatus(ctx, campaignID, "ENABLE")
}

func (t *TikTokAds) setStatus(ctx context.Context, campaignID, op string) bool {
	payload := map[string]any{
		"advertiser_id":    t.creds["advertiser_id"],
		"campaign_ids":     []string{campaignID},
		"operation_status": op,
	}
	u := fmt.Sprintf("%s/campaign/status/update/", t.baseURL)
	status, _, err := doJSON(ctx, t.client, http.MethodPost, u, t.headers(), payload)
	return err == nil && status == http.StatusOK
}

func (t *TikTokAds) ValidateCredentials() bool { return t.creds.hasToken() }

func (t *TikTokAds) advertiserID(accountID string) string {
	if id := t.creds["advertiser_id"]; id != "" {
		return id
	}
	return accountID
}
