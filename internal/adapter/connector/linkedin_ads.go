package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

const linkedinCents = 100

// LinkedInAds talks to the LinkedIn Marketing API. Budget amounts on
// the wire are in minor currency units (cents).
type LinkedInAds struct {
	creds   Credentials
	baseURL string
	client  *http.Client
	now     port.Clock
}

func NewLinkedInAds(creds Credentials) *LinkedInAds {
	return &LinkedInAds{
		creds:   creds,
		baseURL: "https://api.linkedin.com/v2",
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

func (l *LinkedInAds) Name() string { return domain.PlatformLinkedInAds }

func (l *LinkedInAds) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + l.creds["access_token"]}
}

func (l *LinkedInAds) GetCampaigns(ctx context.Context, accountID string) ([]domain.CampaignSummary, error) {
	u := fmt.Sprintf("%s/adCampaigns?q=search&search.account.values[0]=urn:li:sponsoredAccount:%s", l.baseURL, accountID)
	status, body, err := doJSON(ctx, l.client, http.MethodGet, u, l.headers(), nil)
	if err != nil {
		return nil, &port.IntegrationError{Platform: l.Name(), Msg: "fetch campaigns", Err: err}
	}
	if err := statusErr(l.Name(), status, body); err != nil {
		return nil, err
	}
	var data struct {
		Elements []struct {
			ID          json.Number `json:"id"`
			Name        string      `json:"name"`
			Status      string      `json:"status"`
			Type        string      `json:"type"`
			DailyBudget struct {
				Amount json.Number `json:"amount"`
			} `json:"dailyBudget"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &port.IntegrationError{Platform: l.Name(), Msg: "decode campaigns", Err: err}
	}
	campaigns := make([]domain.CampaignSummary, 0, len(data.Elements))
	for _, c := range data.Elements {
		cents, _ := c.DailyBudget.Amount.Float64()
		campaigns = append(campaigns, domain.CampaignSummary{
			ID:       c.ID.String(),
			Name:     c.Name,
			Status:   c.Status,
			Type:     c.Type,
			Budget:   cents / linkedinCents,
			Platform: l.Name(),
		})
	}
	return campaigns, nil
}

func (l *LinkedInAds) CreateCampaign(ctx context.Context, draft domain.CampaignDraft) (string, error) {
	payload := map[string]any{
		"account": fmt.Sprintf("urn:li:sponsoredAccount:%s", draft.AccountID),
		"name":    draft.Name,
		"type":    "SPONSORED_UPDATES",
		// new campaigns start paused
		"status": "PAUSED",
		"dailyBudget": map[string]any{
			"amount": int64(draft.Budget * linkedinCents),
		},
	}
	u := fmt.Sprintf("%s/adCampaigns", l.baseURL)
	status, body, err := doJSON(ctx, l.client, http.MethodPost, u, l.headers(), payload)
	if err != nil {
		return "", &port.IntegrationError{Platform: l.Name(), Msg: "create campaign", Err: err}
	}
	if err := statusErr(l.Name(), status, body); err != nil {
		return "", err
	}
	var result struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.ID.String() == "" {
		return "", &port.IntegrationError{Platform: l.Name(), Msg: "decode create response", Err: err}
	}
	return result.ID.String(), nil
}

func (l *LinkedInAds) UpdateCampaignBudget(ctx context.Context, campaignID string, budget float64) (bool, error) {
	payload := map[string]any{
		"patch": map[string]any{
			"$set": map[string]any{
				"dailyBudget": map[string]any{"amount": int64(budget * linkedinCents)},
			},
		},
	}
	u := fmt.Sprintf("%s/adCampaigns/%s", l.baseURL, campaignID)
	status, body, err := doJSON(ctx, l.client, http.MethodPost, u, l.headers(), payload)
	if err != nil {
		return false, nil
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusUnauthorized:
		return false, statusErr(l.Name(), status, body)
	}
	return status >= 200 && status < 300, nil
}

func (l *LinkedInAds) GetPerformanceMetrics(ctx context.Context, campaignID string, w domain.Window) (map[string]any, error) {
	u := fmt.Sprintf("%s/adAnalytics?q=analytics&campaigns[0]=urn:li:sponsoredCampaign:%s&dateRange.start=%s&dateRange.end=%s",
		l.baseURL, campaignID, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	status, body, err := doJSON(ctx, l.client, http.MethodGet, u, l.headers(), nil)
	if err != nil {
		return nil, &port.IntegrationError{Platform: l.Name(), Msg: "fetch analytics", Err: err}
	}
	if err := statusErr(l.Name(), status, body); err != nil {
		return nil, err
	}
	var data struct {
		Elements []struct {
			CostInLocalCurrency json.Number `json:"costInLocalCurrency"`
			Impressions         json.Number `json:"impressions"`
			Clicks              json.Number `json:"clicks"`
			ExternalConversions json.Number `json:"externalWebsiteConversions"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &port.IntegrationError{Platform: l.Name(), Msg: "decode analytics", Err: err}
	}
	var spend float64
	var impressions, clicks, conversions int64
	for _, e := range data.Elements {
		cost, _ := e.CostInLocalCurrency.Float64() // already currency units
		spend += cost
		imp, _ := e.Impressions.Int64()
		impressions += imp
		clk, _ := e.Clicks.Int64()
		clicks += clk
		conv, _ := e.ExternalConversions.Int64()
		conversions += conv
	}
	return canonicalMetrics(l.Name(), spend, impressions, clicks, conversions, l.now()), nil
}

func (l *LinkedInAds) PauseCampaign(ctx context.Context, campaignID string) bool {
	return l.setStatus(ctx, campaignID, "PAUSED")
}

func (l *LinkedInAds) ActivateCampaign(ctx context.Context, campaignID string) bool {
	return l.setStatus(ctx, campaignID, "ACTIVE")
}

func (l *LinkedInAds) setStatus(ctx context.Context, campaignID, state string) bool {
	payload := map[string]any{
		"patch": map[string]any{"$set": map[string]any{"status": state}},
	}
	u := fmt.Sprintf("%s/adCampaigns/%s", l.baseURL, campaignID)
	status, _, err := doJSON(ctx, l.client, http.MethodPost, u, l.headers(), payload)
	return err == nil && status >= 200 && status < 300
}

func (l *LinkedInAds) ValidateCredentials() bool { return l.creds.hasToken() }
