package domain

import "time"

// SKU statuses. A SKU is never deleted, only transitioned.
const (
	SKUStatusActive    = "active"
	SKUStatusPaused    = "paused"
	SKUStatusCompleted = "completed"
)

// SKU is a product line under automated budget management. It groups
// campaigns across platforms and carries the budget envelope the
// intelligence engine allocates within.
// Invariant: RemainingBudget <= TotalBudget.
type SKU struct {
	ID              string
	ClientID        string
	Name            string
	TotalBudget     float64
	RemainingBudget float64
	Status          string
	// IntelligenceSettings holds per-SKU threshold overrides keyed by
	// the same names as the intelligence config section.
	IntelligenceSettings map[string]float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
