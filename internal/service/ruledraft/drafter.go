package ruledraft

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/agent"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/errors"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
)

// ChatCompleter is the narrow LLM surface the drafter depends on.
// Implementations apply their own timeout policy; the drafter treats
// any error as "assistant unavailable" and never retries.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DraftRequest describes one natural-language drafting request
type DraftRequest struct {
	Prompt string

	// Mode, when set, is forced onto the draft regardless of what the
	// assistant proposed.
	Mode routing.RuleMode

	DefaultTeamID     uuid.UUID
	FallbackTeamID    uuid.UUID
	RelaxAgentFilters bool

	AvailableTeams  []agent.Team
	AvailableAgents []agent.Profile
}

// RuleDraft is a schema-valid draft config plus any degradation warnings
type RuleDraft struct {
	Config   routing.RoutingRuleConfig `json:"config"`
	Warnings []string                  `json:"warnings,omitempty"`
}

// Drafter turns free-text prompts into validated routing rule drafts.
// A nil ChatCompleter runs the heuristic path only.
type Drafter struct {
	llm    ChatCompleter
	logger *slog.Logger
}

// NewDrafter creates a drafter
func NewDrafter(llm ChatCompleter, logger *slog.Logger) *Drafter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Drafter{llm: llm, logger: logger}
}

// DraftRule produces a draft RoutingRuleConfig for the prompt. The
// result always passes ValidateRuleConfig; LLM failures degrade to the
// heuristic draft with a warning and are never surfaced as errors.
func (d *Drafter) DraftRule(ctx context.Context, req *DraftRequest) (*RuleDraft, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.NewValidationError("EMPTY_PROMPT", "a drafting prompt is required")
	}
	if req.DefaultTeamID == uuid.Nil && req.FallbackTeamID == uuid.Nil {
		return nil, errors.NewValidationError("NO_DEFAULT_TARGET", "a default or fallback team id is required to anchor the draft")
	}

	var warnings []string
	cfg := d.assistantDraft(ctx, req, &warnings)
	if cfg == nil {
		cfg = heuristicDraft(req.Prompt)
	}

	d.normalizeDraft(cfg, req)

	if err := routing.ValidateRuleConfig(cfg); err != nil {
		// Assistant output still invalid after repair: discard it and
		// fall back to the pure heuristic draft.
		d.logger.WarnContext(ctx, "draft failed schema validation, reverting to heuristic draft", "error", err)
		warnings = append(warnings, "assistant draft failed validation; generated a heuristic draft instead")
		cfg = heuristicDraft(req.Prompt)
		d.normalizeDraft(cfg, req)
		if err := routing.ValidateRuleConfig(cfg); err != nil {
			return nil, errors.NewInternalError("heuristic draft failed validation").WithCause(err)
		}
	}

	return &RuleDraft{Config: *cfg, Warnings: warnings}, nil
}

// assistantDraft asks the LLM for a draft. Returns nil (with a warning
// appended) on any failure: network error, non-JSON output, or output
// that is not a JSON object.
func (d *Drafter) assistantDraft(ctx context.Context, req *DraftRequest, warnings *[]string) *routing.RoutingRuleConfig {
	if d.llm == nil {
		return nil
	}

	raw, err := d.llm.Complete(ctx, draftSystemPrompt, buildUserPrompt(req))
	if err != nil {
		d.logger.WarnContext(ctx, "routing rule assistant unavailable", "error", err)
		*warnings = append(*warnings, "assistant unavailable; generated a heuristic draft instead")
		return nil
	}

	payload := stripCodeFences(raw)
	if !strings.HasPrefix(strings.TrimSpace(payload), "{") {
		*warnings = append(*warnings, "assistant returned a non-object response; generated a heuristic draft instead")
		return nil
	}

	var cfg routing.RoutingRuleConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		d.logger.WarnContext(ctx, "assistant returned unparseable draft", "error", err)
		*warnings = append(*warnings, "assistant response was not valid JSON; generated a heuristic draft instead")
		return nil
	}
	return &cfg
}

// normalizeDraft repairs a draft in place so that well-meaning but
// incomplete assistant output still validates: force the requested
// mode, anchor missing targets at the caller's teams, and default the
// fallback.
func (d *Drafter) normalizeDraft(cfg *routing.RoutingRuleConfig, req *DraftRequest) {
	if req.Mode != "" {
		cfg.Mode = req.Mode
	}

	if len(cfg.Targets) == 0 {
		if req.DefaultTeamID != uuid.Nil {
			cfg.Targets = []routing.RoutingTarget{{
				Type:     routing.TargetTeam,
				ID:       req.DefaultTeamID,
				Strategy: routing.StrategyBestFit,
			}}
		} else {
			cfg.Targets = []routing.RoutingTarget{{
				Type:  routing.TargetPond,
				ID:    req.FallbackTeamID,
				Label: "Unassigned pond",
			}}
		}
	}

	if cfg.Fallback == nil && req.FallbackTeamID != uuid.Nil {
		cfg.Fallback = &routing.RoutingFallback{TeamID: req.FallbackTeamID}
	}
	if cfg.Fallback != nil && req.RelaxAgentFilters {
		cfg.Fallback.RelaxAgentFilters = true
	}
}

// stripCodeFences unwraps ```json ... ``` blocks models like to emit
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
