package port

import (
	"context"
	"sync"
	"time"

	"skupilot/internal/core/domain"
)

// Clock supplies wall-clock time. Injectable for deterministic tests.
type Clock func() time.Time

// PlatformConnector is the uniform contract over one external ad
// platform. Implementations convert the platform's native monetary unit
// (micros, cents) to currency floats at the boundary.
//
// UpdateCampaignBudget returns false rather than an error for ordinary
// failures; it returns an error only for authentication and rate-limit
// conditions. PauseCampaign and ActivateCampaign are best-effort: they
// swallow transport errors and report false.
type PlatformConnector interface {
	Name() string
	GetCampaigns(ctx context.Context, accountID string) ([]domain.CampaignSummary, error)
	// CreateCampaign creates the campaign in a paused state regardless of
	// the requested status and returns the external campaign id.
	CreateCampaign(ctx context.Context, draft domain.CampaignDraft) (string, error)
	UpdateCampaignBudget(ctx context.Context, campaignID string, budget float64) (bool, error)
	// GetPerformanceMetrics fetches metrics for the half-open window and
	// returns them in the canonical key shape, missing numerics as zero.
	GetPerformanceMetrics(ctx context.Context, campaignID string, w domain.Window) (map[string]any, error)
	PauseCampaign(ctx context.Context, campaignID string) bool
	ActivateCampaign(ctx context.Context, campaignID string) bool
	// ValidateCredentials is a shallow syntactic check, not a live probe.
	ValidateCredentials() bool
}

// Integrator is the contract over a media-buying aggregator service. It
// offers a smaller capability subset than a direct platform connector.
// Failures are reported as false or empty payloads, not errors.
type Integrator interface {
	UpdateCampaignBudget(ctx context.Context, campaignID string, budget float64) (bool, error)
	GetPerformanceMetrics(ctx context.Context, campaignID string, w domain.Window) (map[string]any, error)
}

// CampaignCreator is the optional integrator capability of creating
// campaigns. Detection happens once at registration, not per call.
type CampaignCreator interface {
	CreateCampaign(ctx context.Context, draft domain.CampaignDraft) (string, error)
}

// CampaignPauser is the optional integrator capability of pausing
// campaigns.
type CampaignPauser interface {
	PauseCampaign(ctx context.Context, campaignID string) bool
}

// IntegratorEntry is a registered integrator with its capability flags
// captured at registration time.
type IntegratorEntry struct {
	Name       string
	Integrator Integrator
	CanCreate  bool
	CanPause   bool
}

// Registry holds the platform connectors and integrators available to
// the fallback middleware. It is constructed once at process start and
// threaded through by dependency injection. Registration is guarded so
// on-demand rehydration is safe against concurrent readers.
type Registry struct {
	mu          sync.RWMutex
	platforms   map[string]PlatformConnector
	integrators []IntegratorEntry
}

func NewRegistry() *Registry {
	return &Registry{platforms: make(map[string]PlatformConnector)}
}

func (r *Registry) RegisterPlatform(name string, c PlatformConnector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platforms[name] = c
}

// RegisterIntegrator records the integrator and probes its optional
// capabilities once. Integrators are tried in registration order.
func (r *Registry) RegisterIntegrator(name string, in Integrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, canCreate := in.(CampaignCreator)
	_, canPause := in.(CampaignPauser)
	r.integrators = append(r.integrators, IntegratorEntry{
		Name:       name,
		Integrator: in,
		CanCreate:  canCreate,
		CanPause:   canPause,
	})
}

func (r *Registry) Platform(name string) (PlatformConnector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.platforms[name]
	return c, ok
}

// Integrators returns the registered integrators in registration order.
func (r *Registry) Integrators() []IntegratorEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]IntegratorEntry, len(r.integrators))
	copy(out, r.integrators)
	return out
}
