package routing

import (
	"github.com/shopspring/decimal"
)

// RoutingConditions is a record of independent, optional predicate groups.
// A nil group places no constraint on the lead; only groups that are
// present contribute a check to the evaluation.
type RoutingConditions struct {
	Geography    *GeographyCondition    `json:"geography,omitempty"`
	PriceBand    *PriceBandCondition    `json:"price_band,omitempty"`
	Sources      *SourceCondition       `json:"sources,omitempty"`
	Consent      *ConsentCondition      `json:"consent,omitempty"`
	BuyerRep     *BuyerRepCondition     `json:"buyer_rep,omitempty"`
	TimeWindows  []TimeWindow           `json:"time_windows,omitempty" validate:"omitempty,min=1,dive"`
	Demographics *DemographicsCondition `json:"demographics,omitempty"`
	CustomFields []CustomFieldCondition `json:"custom_fields,omitempty" validate:"omitempty,min=1,dive"`
}

// IncludeExclude holds case-insensitive include/exclude lists for one
// address dimension. An exclude match wins over any include match.
type IncludeExclude struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// IsZero reports whether the pair constrains anything
func (ie IncludeExclude) IsZero() bool {
	return len(ie.Include) == 0 && len(ie.Exclude) == 0
}

// GeographyCondition matches a listing's address fields
type GeographyCondition struct {
	States      IncludeExclude `json:"states,omitempty"`
	Cities      IncludeExclude `json:"cities,omitempty"`
	PostalCodes IncludeExclude `json:"postal_codes,omitempty"`
}

// PriceBandCondition bounds the listing price, inclusive on both ends
type PriceBandCondition struct {
	Min      *decimal.Decimal `json:"min,omitempty"`
	Max      *decimal.Decimal `json:"max,omitempty"`
	Currency string           `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// SourceCondition matches the lead-source string, case-insensitively
type SourceCondition struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// ConsentRequirement is the per-channel consent demand of a rule
type ConsentRequirement string

const (
	ConsentReqOptional   ConsentRequirement = "OPTIONAL"
	ConsentReqGranted    ConsentRequirement = "GRANTED"
	ConsentReqNotRevoked ConsentRequirement = "NOT_REVOKED"
)

// ConsentCondition demands consent state per outreach channel. An empty
// requirement behaves as OPTIONAL.
type ConsentCondition struct {
	SMS   ConsentRequirement `json:"sms,omitempty" validate:"omitempty,oneof=OPTIONAL GRANTED NOT_REVOKED"`
	Email ConsentRequirement `json:"email,omitempty" validate:"omitempty,oneof=OPTIONAL GRANTED NOT_REVOKED"`
}

// BuyerRepRequirement constrains the lead's buyer-representation bucket
type BuyerRepRequirement string

const (
	BuyerRepAny            BuyerRepRequirement = "ANY"
	BuyerRepRequiredActive BuyerRepRequirement = "REQUIRED_ACTIVE"
	BuyerRepProhibitActive BuyerRepRequirement = "PROHIBIT_ACTIVE"
)

type BuyerRepCondition struct {
	Requirement BuyerRepRequirement `json:"requirement" validate:"required,oneof=ANY REQUIRED_ACTIVE PROHIBIT_ACTIVE"`
}

// TimeWindow is a recurring weekly window in its own IANA timezone.
// Start > End means the window wraps past midnight.
type TimeWindow struct {
	Timezone string `json:"timezone" validate:"required,timezone"`
	Start    string `json:"start" validate:"required,hhmm"`
	End      string `json:"end" validate:"required,hhmm"`
	// Days uses 0=Sunday..6=Saturday. Empty means every day.
	Days []int `json:"days,omitempty" validate:"omitempty,dive,min=0,max=6"`
}

// MatchMode selects ANY (at least one) or ALL (every) include semantics
type MatchMode string

const (
	MatchAny MatchMode = "ANY"
	MatchAll MatchMode = "ALL"
)

// StringSetFilter is the shared include/exclude shape for tag-like sets.
// Exclude wins over include; Match defaults to ANY.
type StringSetFilter struct {
	Include []string  `json:"include,omitempty"`
	Exclude []string  `json:"exclude,omitempty"`
	Match   MatchMode `json:"match,omitempty" validate:"omitempty,oneof=ANY ALL"`
}

// Mode returns the effective match mode
func (f *StringSetFilter) Mode() MatchMode {
	if f == nil || f.Match == "" {
		return MatchAny
	}
	return f.Match
}

// DemographicsCondition filters on age bounds and tag-like string sets.
// Language and ethnicity haystacks are unioned with the lead's tags.
type DemographicsCondition struct {
	MinAge      *int             `json:"min_age,omitempty" validate:"omitempty,min=0,max=150"`
	MaxAge      *int             `json:"max_age,omitempty" validate:"omitempty,min=0,max=150"`
	Tags        *StringSetFilter `json:"tags,omitempty"`
	Languages   *StringSetFilter `json:"languages,omitempty"`
	Ethnicities *StringSetFilter `json:"ethnicities,omitempty"`
}

// FieldOperator is the comparison applied to one custom field
type FieldOperator string

const (
	OpEquals      FieldOperator = "EQUALS"
	OpNotEquals   FieldOperator = "NOT_EQUALS"
	OpIn          FieldOperator = "IN"
	OpNotIn       FieldOperator = "NOT_IN"
	OpGT          FieldOperator = "GT"
	OpGTE         FieldOperator = "GTE"
	OpLT          FieldOperator = "LT"
	OpLTE         FieldOperator = "LTE"
	OpContains    FieldOperator = "CONTAINS"
	OpNotContains FieldOperator = "NOT_CONTAINS"
	OpExists      FieldOperator = "EXISTS"
	OpNotExists   FieldOperator = "NOT_EXISTS"
)

// CustomFieldCondition is a free-form predicate over a lead custom field
type CustomFieldCondition struct {
	Key      string        `json:"key" validate:"required"`
	Operator FieldOperator `json:"operator" validate:"required,oneof=EQUALS NOT_EQUALS IN NOT_IN GT GTE LT LTE CONTAINS NOT_CONTAINS EXISTS NOT_EXISTS"`
	Value    interface{}   `json:"value,omitempty"`
}
