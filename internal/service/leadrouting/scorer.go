package leadrouting

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/agent"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
)

// ScoredAgent is the ephemeral per-agent scoring result. It is
// recomputed on every routing decision and never persisted.
type ScoredAgent struct {
	UserID   uuid.UUID     `json:"user_id"`
	FullName string        `json:"full_name"`
	Score    float64       `json:"score"`
	Reasons  []ScoreReason `json:"reasons"`
}

// ScoreReason explains one sub-score's contribution for UI and audit
type ScoreReason struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// ScoreAgent computes a weighted 0..1 fitness score for one candidate.
// Agents that are not consent-ready or 10DLC-ready are excluded entirely
// (nil return), not scored zero: the compliance gate precedes scoring.
func ScoreAgent(input *agent.ScoringInput, weights routing.ScoreWeights) *ScoredAgent {
	if input == nil {
		return nil
	}
	if !input.ConsentReady || !input.TenDLCReady {
		return nil
	}

	capacity := 0.0
	if input.CapacityTarget > 0 {
		capacity = clamp01(float64(input.CapacityRemaining()) / float64(input.CapacityTarget))
	}
	performance := clamp01(input.KeptApptRate)
	geography := clamp01(input.GeographyFit)
	priceBand := clamp01(input.PriceBandFit)

	score := capacity*weights.Capacity +
		performance*weights.Performance +
		geography*weights.Geography +
		priceBand*weights.PriceBand

	return &ScoredAgent{
		UserID:   input.UserID,
		FullName: input.FullName,
		Score:    round4(score),
		Reasons: []ScoreReason{
			{
				Type:        "capacity",
				Description: fmt.Sprintf("%.0f%% of pipeline capacity remaining", capacity*100),
				Weight:      weights.Capacity,
			},
			{
				Type:        "performance",
				Description: fmt.Sprintf("%.0f%% kept-appointment rate", performance*100),
				Weight:      weights.Performance,
			},
			{
				Type:        "geography",
				Description: fmt.Sprintf("%.0f%% geography fit", geography*100),
				Weight:      weights.Geography,
			},
			{
				Type:        "priceBand",
				Description: fmt.Sprintf("%.0f%% price band fit", priceBand*100),
				Weight:      weights.PriceBand,
			},
		},
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

// round4 rounds to 4 decimal places for stable comparison and sorting
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
