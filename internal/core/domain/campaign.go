package domain

import "time"

// Supported ad platforms.
const (
	PlatformGoogleAds   = "google_ads"
	PlatformMetaAds     = "meta_ads"
	PlatformTikTokAds   = "tiktok_ads"
	PlatformLinkedInAds = "linkedin_ads"
)

// Campaign statuses. Deletion is a status transition, never a physical
// removal.
const (
	CampaignStatusActive  = "active"
	CampaignStatusPaused  = "paused"
	CampaignStatusDeleted = "deleted"
)

// Campaign is one advertising campaign on one external platform. It
// belongs to exactly one SKU and one client. BudgetAllocated is the
// current spend ceiling in currency units; after any engine-driven
// change it stays at or above the configured minimum campaign budget.
type Campaign struct {
	ID              string
	SKUID           string
	ClientID        string
	Platform        string
	AccountID       string
	ExternalID      string
	Name            string
	Status          string
	BudgetAllocated float64
	TargetGroups    []string
	Creatives       []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CampaignSummary is the shape a platform connector returns when listing
// campaigns on the external account. Budget is already converted from the
// platform's native unit into currency floats.
type CampaignSummary struct {
	ID       string
	Name     string
	Status   string
	Type     string
	Budget   float64
	Platform string
}

// CampaignDraft carries the fields needed to create a campaign on an
// external platform. Connectors always create campaigns paused,
// regardless of the requested status.
type CampaignDraft struct {
	SKUID      string
	AccountID  string
	Platform   string
	Name       string
	Objective  string
	Budget     float64
	BudgetType string // "daily" or "lifetime"
}
