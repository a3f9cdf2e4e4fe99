package leadrouting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/errors"
)

// service implements the Service interface
type service struct {
	rules   RuleStore
	metrics MetricsCollector
	logger  *slog.Logger
}

// NewService creates a new lead routing service
func NewService(rules RuleStore, metrics MetricsCollector, logger *slog.Logger) Service {
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		rules:   rules,
		metrics: metrics,
		logger:  logger,
	}
}

// EvaluateRule loads a tenant's rule and evaluates its conditions
func (s *service) EvaluateRule(ctx context.Context, tenantID, ruleID uuid.UUID, evalCtx EvalContext) (*Evaluation, error) {
	cfg, err := s.rules.GetRuleConfig(ctx, tenantID, ruleID)
	if err != nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("routing rule %s", ruleID)).WithCause(err)
	}

	evaluation := EvaluateConditions(&cfg.Conditions, evalCtx)
	s.metrics.RecordEvaluation(ctx, tenantID, evaluation.Matched)

	s.logger.DebugContext(ctx, "evaluated routing rule",
		"tenant_id", tenantID,
		"rule_id", ruleID,
		"matched", evaluation.Matched,
		"checks", len(evaluation.Checks),
	)

	return &evaluation, nil
}

// RouteLead produces a ranked routing decision for a candidate pool
func (s *service) RouteLead(ctx context.Context, payload *RouteLeadPayload) (*RoutingDecision, error) {
	start := time.Now()
	decision, err := RouteLead(payload)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)

	s.metrics.RecordDecision(ctx, decision, latency)

	s.logger.InfoContext(ctx, "routed lead",
		"lead_id", payload.LeadID,
		"tenant_id", payload.TenantID,
		"candidates", len(payload.Agents),
		"selected", len(decision.SelectedAgents),
		"used_fallback", decision.UsedFallback,
		"latency_ms", latency.Milliseconds(),
	)

	return decision, nil
}
