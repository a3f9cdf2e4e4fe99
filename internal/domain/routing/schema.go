package routing

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/errors"
)

var hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// validate is configured once at init and only read afterwards
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names in error paths instead of Go identifiers
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// 24-hour zero-padded HH:MM
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("registering hhmm validator: %v", err))
	}

	return v
}

// ParseRuleConfig decodes and validates raw JSON into a RoutingRuleConfig.
// The returned config has defaults applied and is safe to persist or
// evaluate. Any failure is a schema validation AppError naming the
// offending field path.
func ParseRuleConfig(data []byte) (*RoutingRuleConfig, error) {
	var cfg RoutingRuleConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewValidationError("SCHEMA_VALIDATION", "routing rule config is not valid JSON").WithCause(err)
	}
	if err := ValidateRuleConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateRuleConfig normalizes cfg in place and validates it. Validation
// is idempotent: validating an already-validated config changes nothing.
func ValidateRuleConfig(cfg *RoutingRuleConfig) error {
	if cfg == nil {
		return errors.NewValidationError("SCHEMA_VALIDATION", "routing rule config is required")
	}

	normalizeRuleConfig(cfg)

	if err := validate.Struct(cfg); err != nil {
		return translateValidationError(err)
	}

	if err := validateConditions(&cfg.Conditions); err != nil {
		return err
	}

	for i := range cfg.Targets {
		if err := validateTarget(i, &cfg.Targets[i]); err != nil {
			return err
		}
	}

	return nil
}

// normalizeRuleConfig fills schema-level defaults before validation
func normalizeRuleConfig(cfg *RoutingRuleConfig) {
	if cfg.Mode == "" {
		cfg.Mode = ModeAutoAssign
	}
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Type == TargetTeam && t.Strategy == "" {
			t.Strategy = StrategyBestFit
		}
		if t.AgentFilter != nil && t.AgentFilter.Match == "" {
			t.AgentFilter.Match = MatchAny
		}
	}
	if d := cfg.Conditions.Demographics; d != nil {
		for _, f := range []*StringSetFilter{d.Tags, d.Languages, d.Ethnicities} {
			if f != nil && f.Match == "" {
				f.Match = MatchAny
			}
		}
	}
}

func validateConditions(c *RoutingConditions) error {
	if pb := c.PriceBand; pb != nil {
		if pb.Min != nil && pb.Min.IsNegative() {
			return fieldError("conditions.price_band.min", "price band min must not be negative")
		}
		if pb.Max != nil && pb.Max.IsNegative() {
			return fieldError("conditions.price_band.max", "price band max must not be negative")
		}
		if pb.Min != nil && pb.Max != nil && pb.Min.GreaterThan(*pb.Max) {
			return fieldError("conditions.price_band", "price band min exceeds max")
		}
	}

	if d := c.Demographics; d != nil {
		if d.MinAge != nil && d.MaxAge != nil && *d.MinAge > *d.MaxAge {
			return fieldError("conditions.demographics", "min age exceeds max age")
		}
	}

	for i, cf := range c.CustomFields {
		switch cf.Operator {
		case OpExists, OpNotExists:
			// value is ignored for existence checks
		default:
			if cf.Value == nil {
				return fieldError(
					fmt.Sprintf("conditions.custom_fields[%d].value", i),
					fmt.Sprintf("value is required for operator %s", cf.Operator),
				)
			}
		}
	}

	return nil
}

func validateTarget(i int, t *RoutingTarget) error {
	path := func(field string) string { return fmt.Sprintf("targets[%d].%s", i, field) }

	switch t.Type {
	case TargetAgent:
		if t.Strategy != "" {
			return fieldError(path("strategy"), "strategy applies to TEAM targets only")
		}
		if len(t.IncludeRoles) > 0 {
			return fieldError(path("include_roles"), "include_roles applies to TEAM targets only")
		}
	case TargetTeam:
		// normalizeRuleConfig guarantees a strategy
	case TargetPond:
		if t.Strategy != "" {
			return fieldError(path("strategy"), "strategy applies to TEAM targets only")
		}
		if len(t.IncludeRoles) > 0 {
			return fieldError(path("include_roles"), "include_roles applies to TEAM targets only")
		}
		if t.AgentFilter != nil {
			return fieldError(path("agent_filter"), "agent_filter does not apply to POND targets")
		}
	}
	return nil
}

// ValidateSelectorConfig checks the optional per-request selector tuning
func ValidateSelectorConfig(cfg *SelectorConfig) error {
	if cfg == nil {
		return nil
	}
	if err := validate.Struct(cfg); err != nil {
		return translateValidationError(err)
	}
	return nil
}

func fieldError(path, message string) *errors.AppError {
	return errors.NewValidationError("SCHEMA_VALIDATION", message).
		WithDetails(map[string]interface{}{"field": path})
}

// translateValidationError converts validator errors into a schema
// AppError naming the first offending field path
func translateValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.NewValidationError("SCHEMA_VALIDATION", "routing rule config failed validation").WithCause(err)
	}

	fe := verrs[0]
	// Namespace starts with the root struct's json-less type name
	path := fe.Namespace()
	if idx := strings.Index(path, "."); idx >= 0 {
		path = path[idx+1:]
	}

	msg := fmt.Sprintf("field %s failed %q validation", path, fe.Tag())
	return fieldError(path, msg)
}
