package routing

import (
	"github.com/google/uuid"
)

// TargetType discriminates the routing destination shapes
type TargetType string

const (
	TargetAgent TargetType = "AGENT"
	TargetTeam  TargetType = "TEAM"
	TargetPond  TargetType = "POND"
)

// TeamStrategy is how a TEAM target assigns within its roster
type TeamStrategy string

const (
	StrategyBestFit    TeamStrategy = "BEST_FIT"
	StrategyRoundRobin TeamStrategy = "ROUND_ROBIN"
)

// RoutingTarget is a tagged union over AGENT, TEAM and POND destinations.
// Strategy and IncludeRoles apply to TEAM targets only; AgentFilter applies
// to AGENT and TEAM targets. ValidateRuleConfig enforces the shape per tag.
type RoutingTarget struct {
	Type  TargetType `json:"type" validate:"required,oneof=AGENT TEAM POND"`
	ID    uuid.UUID  `json:"id" validate:"required"`
	Label string     `json:"label,omitempty"`

	Strategy     TeamStrategy `json:"strategy,omitempty" validate:"omitempty,oneof=BEST_FIT ROUND_ROBIN"`
	IncludeRoles []string     `json:"include_roles,omitempty"`
	AgentFilter  *AgentFilter `json:"agent_filter,omitempty"`
}

// AgentFilter narrows which agents inside a target are considered. The
// numeric floors are enforced by the caller that builds the candidate
// pool, not by the scorer.
type AgentFilter struct {
	Include []string  `json:"include,omitempty"`
	Exclude []string  `json:"exclude,omitempty"`
	Match   MatchMode `json:"match,omitempty" validate:"omitempty,oneof=ANY ALL"`

	MinKeptApptRate      *float64 `json:"min_kept_appt_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	MinCapacityRemaining *int     `json:"min_capacity_remaining,omitempty" validate:"omitempty,gte=0"`
}
