package leadrouting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/agent"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
)

// Service is the lead routing entry point for the surrounding application
type Service interface {
	// EvaluateRule loads a tenant's rule and evaluates its conditions
	// against the supplied context
	EvaluateRule(ctx context.Context, tenantID, ruleID uuid.UUID, evalCtx EvalContext) (*Evaluation, error)
	// RouteLead produces a ranked routing decision for a candidate pool
	RouteLead(ctx context.Context, payload *RouteLeadPayload) (*RoutingDecision, error)
}

// RuleStore provides validated routing rule configs. Implementations
// must never return a config that fails schema validation.
type RuleStore interface {
	GetRuleConfig(ctx context.Context, tenantID, ruleID uuid.UUID) (*routing.RoutingRuleConfig, error)
	PutRuleConfig(ctx context.Context, tenantID, ruleID uuid.UUID, cfg *routing.RoutingRuleConfig) error
}

// MetricsCollector records routing outcomes
type MetricsCollector interface {
	RecordEvaluation(ctx context.Context, tenantID uuid.UUID, matched bool)
	RecordDecision(ctx context.Context, decision *RoutingDecision, latency time.Duration)
}

// RouteLeadPayload carries one routing request: the lead identity, the
// candidate pool with per-agent scoring facts, and optional tuning.
type RouteLeadPayload struct {
	LeadID   uuid.UUID            `json:"lead_id"`
	TenantID uuid.UUID            `json:"tenant_id"`
	Agents   []agent.ScoringInput `json:"agents"`

	Config         *routing.SelectorConfig `json:"config,omitempty"`
	FallbackTeamID *uuid.UUID              `json:"fallback_team_id,omitempty"`
	QuietHours     *QuietHours             `json:"quiet_hours,omitempty"`
}

// QuietHours is pass-through context about outreach restrictions at
// decision time; the engine surfaces it unchanged in the decision.
type QuietHours struct {
	Active   bool       `json:"active"`
	Timezone string     `json:"timezone,omitempty"`
	Until    *time.Time `json:"until,omitempty"`
}

// RoutingDecision is the ephemeral result of one routing request
type RoutingDecision struct {
	LeadID         uuid.UUID     `json:"lead_id"`
	TenantID       uuid.UUID     `json:"tenant_id"`
	SelectedAgents []ScoredAgent `json:"selected_agents"`
	FallbackTeamID *uuid.UUID    `json:"fallback_team_id,omitempty"`
	UsedFallback   bool          `json:"used_fallback"`
	QuietHours     *QuietHours   `json:"quiet_hours,omitempty"`
}
