package configs

import "time"

// Connectors carries credentials for the external platforms and
// integrators plus the fallback policy knobs. A connector is only
// registered at startup when its credentials pass the shallow
// validation check.
type Connectors struct {
	// FallbackEnabled controls whether the direct platform path is tried
	// after every integrator has failed.
	FallbackEnabled bool `env:"FALLBACK_ENABLED" envDefault:"true"`
	// CallTimeout bounds every individual outbound connector call.
	CallTimeout time.Duration `env:"CALL_TIMEOUT" envDefault:"30s"`

	GoogleAPIKey       string `env:"GOOGLE_API_KEY"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	MetaAccessToken    string `env:"META_ACCESS_TOKEN"`
	TikTokAccessToken  string `env:"TIKTOK_ACCESS_TOKEN"`
	TikTokAdvertiserID string `env:"TIKTOK_ADVERTISER_ID"`
	LinkedInToken      string `env:"LINKEDIN_ACCESS_TOKEN"`

	RevealBotAPIKey   string `env:"REVEALBOT_API_KEY"`
	AdRollAccessToken string `env:"ADROLL_ACCESS_TOKEN"`
}

// rateLimitDelays is the per-platform pause applied after a 429 before
// the path is reported as rate-limited.
var rateLimitDelays = map[string]time.Duration{
	"google_ads":   1 * time.Second,
	"meta_ads":     500 * time.Millisecond,
	"tiktok_ads":   1500 * time.Millisecond,
	"linkedin_ads": 2 * time.Second,
}

// RateLimitDelay returns the backoff for a platform, defaulting to one
// second for unknown platforms.
func (Connectors) RateLimitDelay(platform string) time.Duration {
	if d, ok := rateLimitDelays[platform]; ok {
		return d
	}
	return time.Second
}
