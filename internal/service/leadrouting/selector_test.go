package leadrouting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/agent"
	domainerrors "github.com/homeward-crm/lead-routing-engine/internal/domain/errors"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
)

// candidateWithScore builds an eligible agent whose default-weight score
// equals the given value: capacity, geography and price fit are zeroed so
// only the performance term (weight 0.25) contributes.
func candidateWithScore(name string, score float64) agent.ScoringInput {
	return agent.ScoringInput{
		UserID:       uuid.New(),
		FullName:     name,
		ConsentReady: true,
		TenDLCReady:  true,
		KeptApptRate: score / routing.DefaultPerformanceWeight,
	}
}

// uniformFit builds an agent whose every sub-score equals fit, so the
// default-weight total is fit itself.
func uniformFit(name string, fit float64) agent.ScoringInput {
	return agent.ScoringInput{
		UserID:         uuid.New(),
		FullName:       name,
		ConsentReady:   true,
		TenDLCReady:    true,
		CapacityTarget: 100,
		ActivePipeline: 100 - int(fit*100),
		KeptApptRate:   fit,
		GeographyFit:   fit,
		PriceBandFit:   fit,
	}
}

func routePayload(agents ...agent.ScoringInput) *RouteLeadPayload {
	fallback := uuid.New()
	return &RouteLeadPayload{
		LeadID:         uuid.New(),
		TenantID:       uuid.New(),
		Agents:         agents,
		FallbackTeamID: &fallback,
	}
}

func TestRouteLeadSelectsWithinNearBestBand(t *testing.T) {
	payload := routePayload(
		uniformFit("third", 0.70),
		uniformFit("first", 0.82),
		uniformFit("second", 0.80),
	)

	decision, err := RouteLead(payload)
	require.NoError(t, err)

	// 0.82 and 0.80 sit within 0.05 of the best; 0.70 does not
	require.Len(t, decision.SelectedAgents, 2)
	assert.Equal(t, "first", decision.SelectedAgents[0].FullName)
	assert.Equal(t, "second", decision.SelectedAgents[1].FullName)
	assert.False(t, decision.UsedFallback)
	assert.Nil(t, decision.FallbackTeamID)
	assert.Equal(t, payload.LeadID, decision.LeadID)
	assert.Equal(t, payload.TenantID, decision.TenantID)
}

func TestRouteLeadBandExcludesLaggards(t *testing.T) {
	decision, err := RouteLead(routePayload(
		uniformFit("leader", 0.90),
		uniformFit("laggard", 0.30),
	))
	require.NoError(t, err)

	require.Len(t, decision.SelectedAgents, 1)
	assert.Equal(t, "leader", decision.SelectedAgents[0].FullName)
	assert.False(t, decision.UsedFallback)
}

func TestRouteLeadFallsBackToBestBelowMinimum(t *testing.T) {
	payload := routePayload(
		uniformFit("better", 0.50),
		uniformFit("worse", 0.40),
	)

	decision, err := RouteLead(payload)
	require.NoError(t, err)

	// Nobody clears the 0.6 default minimum, so the single best agent is
	// returned and the decision is flagged as a fallback.
	require.Len(t, decision.SelectedAgents, 1)
	assert.Equal(t, "better", decision.SelectedAgents[0].FullName)
	assert.True(t, decision.UsedFallback)
	require.NotNil(t, decision.FallbackTeamID)
	assert.Equal(t, *payload.FallbackTeamID, *decision.FallbackTeamID)
}

func TestRouteLeadNoEligibleAgents(t *testing.T) {
	gated := uniformFit("gated", 0.95)
	gated.TenDLCReady = false

	payload := routePayload(gated)
	decision, err := RouteLead(payload)
	require.NoError(t, err)

	assert.Empty(t, decision.SelectedAgents)
	assert.True(t, decision.UsedFallback)
	require.NotNil(t, decision.FallbackTeamID)
	assert.Equal(t, *payload.FallbackTeamID, *decision.FallbackTeamID)
}

func TestRouteLeadEmptyPool(t *testing.T) {
	decision, err := RouteLead(routePayload())
	require.NoError(t, err)
	assert.Empty(t, decision.SelectedAgents)
	assert.True(t, decision.UsedFallback)
}

func TestRouteLeadCustomMinimumScore(t *testing.T) {
	minimum := 0.3
	payload := routePayload(
		uniformFit("better", 0.50),
		uniformFit("worse", 0.40),
	)
	payload.Config = &routing.SelectorConfig{MinimumScore: &minimum}

	decision, err := RouteLead(payload)
	require.NoError(t, err)

	// With the bar lowered, 0.50 clears it; 0.40 is outside the band
	require.Len(t, decision.SelectedAgents, 1)
	assert.Equal(t, "better", decision.SelectedAgents[0].FullName)
	assert.False(t, decision.UsedFallback)
}

func TestRouteLeadCustomWeights(t *testing.T) {
	one := 1.0
	zero := 0.0
	payload := routePayload(
		candidateWithScore("performer", 0.25),
	)
	// Weight performance alone; its raw rate is 0.25/0.25 = 1.0
	payload.Config = &routing.SelectorConfig{
		Weights: &routing.ScoreWeightsConfig{
			Capacity:    &zero,
			Performance: &one,
			Geography:   &zero,
			PriceBand:   &zero,
		},
	}

	decision, err := RouteLead(payload)
	require.NoError(t, err)
	require.Len(t, decision.SelectedAgents, 1)
	assert.Equal(t, 1.0, decision.SelectedAgents[0].Score)
	assert.False(t, decision.UsedFallback)
}

func TestRouteLeadNilPayload(t *testing.T) {
	decision, err := RouteLead(nil)
	require.Error(t, err)
	assert.Nil(t, decision)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))
}

func TestRouteLeadInvalidSelectorConfig(t *testing.T) {
	minimum := 1.5
	payload := routePayload(uniformFit("anyone", 0.9))
	payload.Config = &routing.SelectorConfig{MinimumScore: &minimum}

	decision, err := RouteLead(payload)
	require.Error(t, err)
	assert.Nil(t, decision)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))
}

func TestRouteLeadPreservesQuietHours(t *testing.T) {
	payload := routePayload(uniformFit("anyone", 0.9))
	payload.QuietHours = &QuietHours{Active: true, Timezone: "America/Chicago"}

	decision, err := RouteLead(payload)
	require.NoError(t, err)
	require.NotNil(t, decision.QuietHours)
	assert.True(t, decision.QuietHours.Active)
	assert.Equal(t, "America/Chicago", decision.QuietHours.Timezone)
}

func TestRouteLeadDoesNotMutatePayload(t *testing.T) {
	agents := []agent.ScoringInput{
		uniformFit("b", 0.70),
		uniformFit("a", 0.90),
	}
	payload := routePayload(agents...)

	_, err := RouteLead(payload)
	require.NoError(t, err)

	assert.Equal(t, "b", payload.Agents[0].FullName)
	assert.Equal(t, "a", payload.Agents[1].FullName)
}
