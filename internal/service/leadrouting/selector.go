package leadrouting

import (
	"sort"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/errors"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
)

// nearBestBand is the absolute score margin below the leader within
// which agents are jointly eligible for selection.
const nearBestBand = 0.05

// RouteLead scores every candidate agent, applies the minimum-score and
// near-best-band selection, and falls back to the single best-scoring
// agent when nobody clears the bar. Pure: no I/O, inputs untouched.
func RouteLead(payload *RouteLeadPayload) (*RoutingDecision, error) {
	if payload == nil {
		return nil, errors.NewValidationError("EMPTY_PAYLOAD", "route lead payload is required")
	}
	if err := routing.ValidateSelectorConfig(payload.Config); err != nil {
		return nil, err
	}
	minimumScore, weights := payload.Config.Resolve()

	scored := make([]ScoredAgent, 0, len(payload.Agents))
	for i := range payload.Agents {
		if sa := ScoreAgent(&payload.Agents[i], weights); sa != nil {
			scored = append(scored, *sa)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	decision := &RoutingDecision{
		LeadID:     payload.LeadID,
		TenantID:   payload.TenantID,
		QuietHours: payload.QuietHours,
	}

	if len(scored) == 0 {
		// Nobody eligible at all: the caller routes to the fallback team
		decision.SelectedAgents = []ScoredAgent{}
		decision.UsedFallback = true
		decision.FallbackTeamID = payload.FallbackTeamID
		return decision, nil
	}

	bestScore := scored[0].Score
	selected := make([]ScoredAgent, 0, len(scored))
	for _, sa := range scored {
		if sa.Score >= minimumScore && sa.Score >= bestScore-nearBestBand {
			selected = append(selected, sa)
		}
	}

	if len(selected) == 0 {
		// Nobody cleared the minimum: fall back to the single best agent
		decision.SelectedAgents = scored[:1]
		decision.UsedFallback = true
		decision.FallbackTeamID = payload.FallbackTeamID
		return decision, nil
	}

	decision.SelectedAgents = selected
	decision.UsedFallback = false
	return decision, nil
}
