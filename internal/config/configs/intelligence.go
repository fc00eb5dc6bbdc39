package configs

import "time"

// Intelligence holds the thresholds and percentages driving the SKU
// decision engine. Every field is overridable through the environment
// for per-tenant tuning; the engine also accepts a value of this struct
// directly so tests can tune thresholds per call.
type Intelligence struct {
	// MinCampaignBudget is the floor (in currency units) below which no
	// engine-driven change may push a campaign budget.
	MinCampaignBudget float64 `env:"MIN_CAMPAIGN_BUDGET" envDefault:"100"`
	// ExploreBudgetPercentage is the share of total active budget
	// reallocated toward underperformers in explore mode.
	ExploreBudgetPercentage float64 `env:"EXPLORE_BUDGET_PERCENTAGE" envDefault:"20"`
	// ImpressionThreshold is the minimum impressions before the engine
	// considers leaving explore mode.
	ImpressionThreshold int64 `env:"IMPRESSION_THRESHOLD" envDefault:"1000"`
	// MinimumDataPoints normalises the confidence score: confidence is
	// min(dataPoints/MinimumDataPoints, 1).
	MinimumDataPoints int `env:"MINIMUM_DATA_POINTS" envDefault:"50"`
	// ExploreModeDurationDays keeps young SKUs in explore mode.
	ExploreModeDurationDays int `env:"EXPLORE_MODE_DURATION_DAYS" envDefault:"7"`
	// ExploitConfidenceThreshold and MinROASForExploit gate the switch
	// into exploit mode.
	ExploitConfidenceThreshold float64 `env:"EXPLOIT_CONFIDENCE_THRESHOLD" envDefault:"0.8"`
	MinROASForExploit          float64 `env:"MIN_ROAS_FOR_EXPLOIT" envDefault:"2.0"`
	// HighROASThreshold / LowROASThreshold bound the exploit-mode
	// per-campaign adjustments; campaigns in between are left alone.
	HighROASThreshold float64 `env:"HIGH_ROAS_THRESHOLD" envDefault:"3.0"`
	LowROASThreshold  float64 `env:"LOW_ROAS_THRESHOLD" envDefault:"1.5"`
	// MaxDailyBudgetIncreasePercentage caps the single-cycle increase as
	// a share of the current budget.
	MaxDailyBudgetIncreasePercentage float64 `env:"MAX_DAILY_BUDGET_INCREASE_PERCENTAGE" envDefault:"50"`
	// PerformanceWindowDays is how far back the engine looks when
	// aggregating SKU performance.
	PerformanceWindowDays int `env:"PERFORMANCE_WINDOW_DAYS" envDefault:"7"`
	// Interval is the steady-state scheduler cadence. RetryInterval is
	// the degraded cadence used after a pass-level failure.
	Interval      time.Duration `env:"INTERVAL" envDefault:"1h"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"5m"`
}
