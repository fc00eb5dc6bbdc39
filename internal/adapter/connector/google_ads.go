package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"skupilot/internal/core/domain"
	"skupilot/internal/core/port"
)

const googleMicros = 1_000_000

// GoogleAds talks to the Google Ads REST API. Budgets on the wire are
// expressed in micros; everything crossing this boundary is converted
// to currency floats.
type GoogleAds struct {
	creds   Credentials
	baseURL string
	client  *http.Client
	now     port.Clock
}

func NewGoogleAds(creds Credentials) *GoogleAds {
	return &GoogleAds{
		creds:   creds,
		baseURL: "https://googleads.googleapis.com/v14",
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

func (g *GoogleAds) Name() string { return domain.PlatformGoogleAds }

func (g *GoogleAds) headers() map[string]string {
	return map[string]string{
		"Authorization":   "Bearer " + g.creds["api_key"],
		"developer-token": g.creds["api_key"],
	}
}

func (g *GoogleAds) GetCampaigns(ctx context.Context, accountID string) ([]domain.CampaignSummary, error) {
	query := `SELECT campaign.id, campaign.name, campaign.status,
        campaign.advertising_channel_type, campaign_budget.amount_micros
        FROM campaign WHERE campaign.status != 'REMOVED'`
	url := fmt.Sprintf("%s/customers/%s/googleAds:search", g.baseURL, accountID)
	status, body, err := doJSON(ctx, g.client, http.MethodPost, url, g.headers(), map[string]string{"query": query})
	if err != nil {
		return nil, &port.IntegrationError{Platform: g.Name(), Msg: "fetch campaigns", Err: err}
	}
	if err := statusErr(g.Name(), status, body); err != nil {
		return nil, err
	}

	var data struct {
		Results []struct {
			Campaign struct {
				ID     json.Number `json:"id"`
				Name   string      `json:"name"`
				Status string      `json:"status"`
				Type   string      `json:"advertisingChannelType"`
			} `json:"campaign"`
			CampaignBudget struct {
				AmountMicros json.Number `json:"amountMicros"`
			} `json:"campaignBudget"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &port.IntegrationError{Platform: g.Name(), Msg: "decode campaigns", Err: err}
	}
	campaigns := make([]domain.CampaignSummary, 0, len(data.Results))
	for _, row := range data.Results {
		micros, _ := row.CampaignBudget.AmountMicros.Float64()
		campaigns = append(campaigns, domain.CampaignSummary{
			ID:       row.Campaign.ID.String(),
			Name:     row.Campaign.Name,
			Status:   row.Campaign.Status,
			Type:     row.Campaign.Type,
			Budget:   micros / googleMicros,
			Platform: g.Name(),
		})
	}
	return campaigns, nil
}

func (g *GoogleAds) CreateCampaign(ctx context.Context, draft domain.CampaignDraft) (string, error) {
	payload := map[string]any{
		"name":                   draft.Name,
		"advertisingChannelType": mapGoogleChannel(draft.Objective),
		// new campaigns start paused
		"status": "PAUSED",
		"campaignBudget": map[string]any{
			"amountMicros": int64(draft.Budget * googleMicros),
		},
	}
	url := fmt.Sprintf("%s/customers/%s/campaigns", g.baseURL, draft.AccountID)
	status, body, err := doJSON(ctx, g.client, http.MethodPost, url, g.headers(), payload)
	if err != nil {
		return "", &port.IntegrationError{Platform: g.Name(), Msg: "create campaign", Err: err}
	}
	if err := statusErr(g.Name(), status, body); err != nil {
		return "", err
	}
	var result struct {
		Results []struct {
			ResourceName string `json:"resourceName"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil || len(result.Results) == 0 {
		return "", &port.IntegrationError{Platform: g.Name(), Msg: "decode create response", Err: err}
	}
	parts := strings.Split(result.Results[0].ResourceName, "/")
	return parts[len(parts)-1], nil
}

func (g *GoogleAds) UpdateCampaignBudget(ctx context.Context, campaignID string, budget float64) (bool, error) {
	payload := map[string]any{"amountMicros": int64(budget * googleMicros)}
	url := fmt.Sprintf("%s/customers/%s/campaignBudgets/%s", g.baseURL, g.creds["client_id"], campaignID)
	status, body, err := doJSON(ctx, g.client, http.MethodPatch, url, g.headers(), payload)
	if err != nil {
		return false, nil // transport failure is an ordinary failed attempt
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusUnauthorized:
		return false, statusErr(g.Name(), status, body)
	}
	return status == http.StatusOK, nil
}

func (g *GoogleAds) GetPerformanceMetrics(ctx context.Context, campaignID string, w domain.Window) (map[string]any, error) {
	query := fmt.Sprintf(`SELECT segments.date, metrics.cost_micros,
        metrics.impressions, metrics.clicks, metrics.conversions
        FROM campaign WHERE campaign.id = %s
        AND segments.date >= '%s' AND segments.date < '%s'`,
		campaignID, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	url := fmt.Sprintf("%s/customers/%s/googleAds:search", g.baseURL, g.creds["client_id"])
	status, body, err := doJSON(ctx, g.client, http.MethodPost, url, g.headers(), map[string]string{"query": query})
	if err != nil {
		return nil, &port.IntegrationError{Platform: g.Name(), Msg: "fetch metrics", Err: err}
	}
	if err := statusErr(g.Name(), status, body); err != nil {
		return nil, err
	}
	var data struct {
		Results []struct {
			Metrics struct {
				CostMicros  json.Number `json:"costMicros"`
				Impressions json.Number `json:"impressions"`
				Clicks      json.Number `json:"clicks"`
				Conversions json.Number `json:"conversions"`
			} `json:"metrics"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &port.IntegrationError{Platform: g.Name(), Msg: "decode metrics", Err: err}
	}

	var spend, conversions float64
	var impressions, clicks int64
	for _, row := range data.Results {
		cost, _ := row.Metrics.CostMicros.Float64()
		spend += cost / googleMicros
		imp, _ := row.Metrics.Impressions.Int64()
		impressions += imp
		clk, _ := row.Metrics.Clicks.Int64()
		clicks += clk
		conv, _ := row.Metrics.Conversions.Float64()
		conversions += conv
	}
	return canonicalMetrics(g.Name(), spend, impressions, clicks, int64(conversions), g.now()), nil
}

func (g *GoogleAds) PauseCampaign(ctx context.Context, campaignID string) bool {
	return g.setStatus(ctx, campaignID, "PAUSED")
}

func (g *GoogleAds) ActivateCampaign(ctx context.Context, campaignID string) bool {
	return g.setStatus(ctx, campaignID, "ENABLED")
}

func (g *GoogleAds) setStatus(ctx context.Context, campaignID, state string) bool {
	url := fmt.Sprintf("%s/customers/%s/campaigns/%s", g.baseURL, g.creds["client_id"], campaignID)
	status, _, err := doJSON(ctx, g.client, http.MethodPatch, url, g.headers(), map[string]string{"status": state})
	return err == nil && status == http.StatusOK
}

func (g *GoogleAds) ValidateCredentials() bool { return g.creds.hasToken() }

func mapGoogleChannel(objective string) string {
	switch strings.ToLower(objective) {
	case "display":
		return "DISPLAY"
	case "video":
		return "VIDEO"
	case "shopping":
		return "SHOPPING"
	case "app":
		return "APP"
	default:
		return "SEARCH"
	}
}

// canonicalMetrics builds the normalized metric map every connector
// returns: missing numerics default to zero and derived rates guard
// against division by zero.
func canonicalMetrics(platform string, spend float64, impressions, clicks, conversions int64, ts time.Time) map[string]any {
	var ctr, cpc, roas float64
	if impressions > 0 {
		ctr = float64(clicks) / float64(impressions) * 100
	}
	if clicks > 0 {
		cpc = spend / float64(clicks)
	}
	if spend > 0 {
		roas = float64(conversions) / spend
	}
	return map[string]any{
		"spend":       spend,
		"impressions": impressions,
		"clicks":      clicks,
		"conversions": conversions,
		"ctr":         ctr,
		"cpc":         cpc,
		"roas":        roas,
		"platform":    platform,
		"timestamp":   ts,
	}
}
