package agent

import (
	"time"

	"github.com/google/uuid"
)

// Profile describes an agent as known to the roster. The draft path uses
// profiles to resolve names mentioned in prompts; the scorer consumes
// ScoringInput instead.
type Profile struct {
	UserID    uuid.UUID  `json:"user_id"`
	FullName  string     `json:"full_name"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	Roles     []string   `json:"roles,omitempty"`
	Timezone  string     `json:"timezone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Team is a routing destination grouping agents
type Team struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	TenantID uuid.UUID `json:"tenant_id"`
}

// ScoringInput carries the per-agent facts the scorer needs. The
// surrounding application computes the fit values; the engine only
// combines them.
type ScoringInput struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`

	// Compliance eligibility gates. An agent failing either is excluded
	// from scoring entirely.
	ConsentReady bool `json:"consent_ready"`
	TenDLCReady  bool `json:"ten_dlc_ready"`

	CapacityTarget int     `json:"capacity_target"`
	ActivePipeline int     `json:"active_pipeline"`
	KeptApptRate   float64 `json:"kept_appt_rate"`
	GeographyFit   float64 `json:"geography_fit"`
	PriceBandFit   float64 `json:"price_band_fit"`
}

// CapacityRemaining returns the open pipeline slots, never negative
func (in *ScoringInput) CapacityRemaining() int {
	remaining := in.CapacityTarget - in.ActivePipeline
	if remaining < 0 {
		return 0
	}
	return remaining
}
