package ruledraft

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
)

// Best-effort extraction patterns for the offline draft path. This is
// explicitly not a natural-language understanding system.
var (
	// "$500,000", "$1.2m", "750k"
	priceRegex = regexp.MustCompile(`(?i)(\$)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*([km])?\b`)

	// "over 65", "older than 55", "age 60"
	minAgeRegex = regexp.MustCompile(`(?i)\b(?:over|older\s+than|age)\s+([0-9]{1,3})\b`)
)

var ethnicityKeywords = map[string]string{
	"hispanic": "hispanic",
	"latino":   "hispanic",
	"latina":   "hispanic",
}

var languageKeywords = map[string]string{
	"spanish": "spanish",
	"español": "spanish",
	"espanol": "spanish",
}

// heuristicDraft extracts what it can from the prompt: a price floor,
// a minimum age, and ethnicity/language hints. Targets and fallback are
// left for normalizeDraft to anchor.
func heuristicDraft(prompt string) *routing.RoutingRuleConfig {
	cfg := &routing.RoutingRuleConfig{}

	if min, ok := extractPriceFloor(prompt); ok {
		floor := decimal.NewFromFloat(min)
		cfg.Conditions.PriceBand = &routing.PriceBandCondition{Min: &floor}
	}

	demo := &routing.DemographicsCondition{}
	hasDemo := false

	if m := minAgeRegex.FindStringSubmatch(prompt); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil && age > 0 && age <= 150 {
			demo.MinAge = &age
			hasDemo = true
		}
	}

	lowered := strings.ToLower(prompt)
	if hint := firstKeywordHit(lowered, ethnicityKeywords); hint != "" {
		demo.Ethnicities = &routing.StringSetFilter{Include: []string{hint}, Match: routing.MatchAny}
		hasDemo = true
	}
	if hint := firstKeywordHit(lowered, languageKeywords); hint != "" {
		demo.Languages = &routing.StringSetFilter{Include: []string{hint}, Match: routing.MatchAny}
		hasDemo = true
	}

	if hasDemo {
		cfg.Conditions.Demographics = demo
	}

	return cfg
}

// extractPriceFloor finds the first money-looking amount. A bare number
// counts only when it carries a dollar sign or a k/m suffix, so ages and
// other quantities are not mistaken for prices.
func extractPriceFloor(prompt string) (float64, bool) {
	for _, m := range priceRegex.FindAllStringSubmatch(prompt, -1) {
		hasDollar := m[1] != ""
		suffix := strings.ToLower(m[3])
		if !hasDollar && suffix == "" {
			continue
		}
		raw := strings.ReplaceAll(m[2], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		switch suffix {
		case "k":
			amount *= 1_000
		case "m":
			amount *= 1_000_000
		}
		if amount > 0 {
			return amount, true
		}
	}
	return 0, false
}

func firstKeywordHit(lowered string, keywords map[string]string) string {
	for keyword, canonical := range keywords {
		if strings.Contains(lowered, keyword) {
			return canonical
		}
	}
	return ""
}
