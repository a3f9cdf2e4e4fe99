package routing

import (
	"github.com/google/uuid"
)

// RuleMode controls what the surrounding application does with a match
type RuleMode string

const (
	ModeAutoAssign RuleMode = "AUTO_ASSIGN"
	ModeSuggest    RuleMode = "SUGGEST"
)

// RoutingRuleConfig is the persisted shape of one routing rule: the
// condition groups, the ordered targets, and an optional fallback.
// Targets are never empty after validation.
type RoutingRuleConfig struct {
	Mode       RuleMode          `json:"mode,omitempty" validate:"omitempty,oneof=AUTO_ASSIGN SUGGEST"`
	Conditions RoutingConditions `json:"conditions"`
	Targets    []RoutingTarget   `json:"targets" validate:"required,min=1,dive"`
	Fallback   *RoutingFallback  `json:"fallback,omitempty"`
}

// RoutingFallback is the last-resort destination when no target or agent
// satisfies the rule.
type RoutingFallback struct {
	TeamID             uuid.UUID `json:"team_id" validate:"required"`
	EscalationChannels []string  `json:"escalation_channels,omitempty" validate:"omitempty,dive,oneof=sms email slack"`
	RelaxAgentFilters  bool      `json:"relax_agent_filters,omitempty"`
}

// Default score weights for the agent scorer
const (
	DefaultMinimumScore      = 0.6
	DefaultCapacityWeight    = 0.35
	DefaultPerformanceWeight = 0.25
	DefaultGeographyWeight   = 0.20
	DefaultPriceBandWeight   = 0.20
)

// ScoreWeights is the resolved weight set the scorer combines with.
// Weights need not sum to 1; the combination is a plain weighted sum.
type ScoreWeights struct {
	Capacity    float64 `json:"capacity"`
	Performance float64 `json:"performance"`
	Geography   float64 `json:"geography"`
	PriceBand   float64 `json:"price_band"`
}

// DefaultScoreWeights returns the standard weight distribution
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Capacity:    DefaultCapacityWeight,
		Performance: DefaultPerformanceWeight,
		Geography:   DefaultGeographyWeight,
		PriceBand:   DefaultPriceBandWeight,
	}
}

// SelectorConfig is the optional, partially-specified selector tuning
// supplied with a routing request. Pointer fields distinguish "absent,
// use the default" from an explicit zero.
type SelectorConfig struct {
	MinimumScore *float64            `json:"minimum_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	Weights      *ScoreWeightsConfig `json:"weights,omitempty"`
}

// ScoreWeightsConfig mirrors ScoreWeights with per-field presence
type ScoreWeightsConfig struct {
	Capacity    *float64 `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	Performance *float64 `json:"performance,omitempty" validate:"omitempty,gte=0"`
	Geography   *float64 `json:"geography,omitempty" validate:"omitempty,gte=0"`
	PriceBand   *float64 `json:"price_band,omitempty" validate:"omitempty,gte=0"`
}

// Resolve fills every absent field with its default. Safe on a nil
// receiver so callers can pass an omitted config straight through.
func (c *SelectorConfig) Resolve() (minimumScore float64, weights ScoreWeights) {
	minimumScore = DefaultMinimumScore
	weights = DefaultScoreWeights()
	if c == nil {
		return minimumScore, weights
	}
	if c.MinimumScore != nil {
		minimumScore = *c.MinimumScore
	}
	if c.Weights != nil {
		if c.Weights.Capacity != nil {
			weights.Capacity = *c.Weights.Capacity
		}
		if c.Weights.Performance != nil {
			weights.Performance = *c.Weights.Performance
		}
		if c.Weights.Geography != nil {
			weights.Geography = *c.Weights.Geography
		}
		if c.Weights.PriceBand != nil {
			weights.PriceBand = *c.Weights.PriceBand
		}
	}
	return minimumScore, weights
}
