package leadrouting

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/lead"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/listing"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
)

// EvalContext is the point-in-time world a condition set is evaluated
// against. The evaluator never mutates it and performs no I/O.
type EvalContext struct {
	Lead    *lead.Lead
	Listing *listing.Listing
	Now     time.Time
}

// CheckResult reports one condition category's outcome
type CheckResult struct {
	Key    string `json:"key"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Evaluation is the full result of evaluating a condition set
type Evaluation struct {
	Matched bool          `json:"matched"`
	Checks  []CheckResult `json:"checks"`
}

// EvaluateConditions evaluates each condition category that is present in
// the config against the context. Absent categories contribute no check.
// Matched is the logical AND over all present checks. Categories that
// need a fact the context does not supply fail closed rather than skip.
func EvaluateConditions(cond *routing.RoutingConditions, evalCtx EvalContext) Evaluation {
	result := Evaluation{Matched: true}
	if cond == nil {
		return result
	}

	add := func(check CheckResult) {
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.Matched = false
		}
	}

	if cond.Geography != nil {
		add(checkGeography(cond.Geography, evalCtx.Listing))
	}
	if cond.PriceBand != nil {
		add(checkPriceBand(cond.PriceBand, evalCtx.Listing))
	}
	if cond.Sources != nil {
		add(checkSources(cond.Sources, evalCtx.Lead))
	}
	if cond.Consent != nil {
		add(checkConsent(cond.Consent, evalCtx.Lead))
	}
	if cond.BuyerRep != nil {
		add(checkBuyerRep(cond.BuyerRep, evalCtx.Lead))
	}
	if len(cond.TimeWindows) > 0 {
		add(checkTimeWindows(cond.TimeWindows, evalCtx.Now))
	}
	if cond.Demographics != nil {
		add(checkDemographics(cond.Demographics, evalCtx.Lead))
	}
	if len(cond.CustomFields) > 0 {
		add(checkCustomFields(cond.CustomFields, evalCtx.Lead))
	}

	return result
}

func checkGeography(g *routing.GeographyCondition, lst *listing.Listing) CheckResult {
	check := CheckResult{Key: "geography"}
	if lst == nil {
		check.Detail = "geography condition present but no listing supplied"
		return check
	}

	dims := []struct {
		name  string
		value string
		lists routing.IncludeExclude
	}{
		{"state", lst.Address.State, g.States},
		{"city", lst.Address.City, g.Cities},
		{"postal code", lst.Address.PostalCode, g.PostalCodes},
	}

	for _, dim := range dims {
		if dim.lists.IsZero() {
			continue
		}
		value := strings.ToLower(strings.TrimSpace(dim.value))
		if value == "" {
			check.Detail = fmt.Sprintf("listing has no %s to match against", dim.name)
			return check
		}
		if containsFold(dim.lists.Exclude, value) {
			check.Detail = fmt.Sprintf("listing %s %q is excluded", dim.name, dim.value)
			return check
		}
		if len(dim.lists.Include) > 0 && !containsFold(dim.lists.Include, value) {
			check.Detail = fmt.Sprintf("listing %s %q is not in the include list", dim.name, dim.value)
			return check
		}
	}

	check.Passed = true
	return check
}

func checkPriceBand(pb *routing.PriceBandCondition, lst *listing.Listing) CheckResult {
	check := CheckResult{Key: "priceBand"}
	if lst == nil || !lst.HasPrice() {
		check.Detail = "price band condition present but no priced listing supplied"
		return check
	}
	price := lst.Price
	if pb.Min != nil && price.LessThan(*pb.Min) {
		check.Detail = fmt.Sprintf("listing price %s is below minimum %s", price.String(), pb.Min.String())
		return check
	}
	if pb.Max != nil && price.GreaterThan(*pb.Max) {
		check.Detail = fmt.Sprintf("listing price %s is above maximum %s", price.String(), pb.Max.String())
		return check
	}
	check.Passed = true
	return check
}

func checkSources(sc *routing.SourceCondition, ld *lead.Lead) CheckResult {
	check := CheckResult{Key: "sources"}
	source := ""
	if ld != nil {
		source = strings.ToLower(strings.TrimSpace(ld.Source))
	}
	if source == "" {
		check.Detail = "source condition present but lead has no source"
		return check
	}
	if containsFold(sc.Exclude, source) {
		check.Detail = fmt.Sprintf("lead source %q is excluded", ld.Source)
		return check
	}
	if len(sc.Include) > 0 && !containsFold(sc.Include, source) {
		check.Detail = fmt.Sprintf("lead source %q is not in the include list", ld.Source)
		return check
	}
	check.Passed = true
	return check
}

func checkConsent(cc *routing.ConsentCondition, ld *lead.Lead) CheckResult {
	check := CheckResult{Key: "consent"}

	requirements := []struct {
		channel lead.Channel
		req     routing.ConsentRequirement
	}{
		{lead.ChannelSMS, cc.SMS},
		{lead.ChannelEmail, cc.Email},
	}

	for _, r := range requirements {
		if r.req == "" || r.req == routing.ConsentReqOptional {
			continue
		}
		state := lead.ConsentUnknown
		if ld != nil {
			state = ld.ConsentFor(r.channel)
		}
		switch r.req {
		case routing.ConsentReqGranted:
			if state != lead.ConsentGranted {
				check.Detail = fmt.Sprintf("%s consent is %s, rule requires GRANTED", r.channel, state)
				return check
			}
		case routing.ConsentReqNotRevoked:
			// UNKNOWN passes NOT_REVOKED; only an explicit revocation blocks
			if state == lead.ConsentRevoked {
				check.Detail = fmt.Sprintf("%s consent is revoked", r.channel)
				return check
			}
		}
	}

	check.Passed = true
	return check
}

func checkBuyerRep(br *routing.BuyerRepCondition, ld *lead.Lead) CheckResult {
	check := CheckResult{Key: "buyerRep"}
	bucket := lead.BuyerRepUnknown
	if ld != nil {
		bucket = ld.BuyerRepBucket()
	}
	switch br.Requirement {
	case routing.BuyerRepRequiredActive:
		if bucket != lead.BuyerRepActive {
			check.Detail = fmt.Sprintf("buyer representation is %s, rule requires an active agreement", bucket)
			return check
		}
	case routing.BuyerRepProhibitActive:
		if bucket == lead.BuyerRepActive {
			check.Detail = "lead already has an active buyer representation agreement"
			return check
		}
	}
	check.Passed = true
	return check
}

func checkTimeWindows(windows []routing.TimeWindow, now time.Time) CheckResult {
	check := CheckResult{Key: "timeWindows"}

	for _, w := range windows {
		ok, err := windowContains(w, now)
		if err != nil {
			// Validated configs have well-formed windows; fail closed on
			// anything that slipped through.
			check.Detail = err.Error()
			return check
		}
		if ok {
			check.Passed = true
			return check
		}
	}

	check.Detail = fmt.Sprintf("instant %s falls outside all %d time windows", now.UTC().Format(time.RFC3339), len(windows))
	return check
}

// windowContains projects now into the window's own timezone and tests
// weekday and minute-of-day membership. Start > End wraps past midnight.
func windowContains(w routing.TimeWindow, now time.Time) (bool, error) {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return false, fmt.Errorf("unknown timezone %q", w.Timezone)
	}
	start, err := minuteOfDay(w.Start)
	if err != nil {
		return false, err
	}
	end, err := minuteOfDay(w.End)
	if err != nil {
		return false, err
	}

	local := now.In(loc)
	if len(w.Days) > 0 {
		weekday := int(local.Weekday())
		matched := false
		for _, d := range w.Days {
			if d == weekday {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}

	minute := local.Hour()*60 + local.Minute()
	if start <= end {
		return minute >= start && minute <= end, nil
	}
	// Overnight window, e.g. 22:00-06:00
	return minute >= start || minute <= end, nil
}

func minuteOfDay(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed time %q", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("malformed time %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("malformed time %q", hhmm)
	}
	return hour*60 + minute, nil
}

func checkDemographics(d *routing.DemographicsCondition, ld *lead.Lead) CheckResult {
	check := CheckResult{Key: "demographics"}

	if d.MinAge != nil || d.MaxAge != nil {
		if ld == nil || ld.Age == nil {
			check.Detail = "age bounds present but lead has no age"
			return check
		}
		age := *ld.Age
		if d.MinAge != nil && age < *d.MinAge {
			check.Detail = fmt.Sprintf("lead age %d is below minimum %d", age, *d.MinAge)
			return check
		}
		if d.MaxAge != nil && age > *d.MaxAge {
			check.Detail = fmt.Sprintf("lead age %d is above maximum %d", age, *d.MaxAge)
			return check
		}
	}

	filters := []struct {
		name     string
		filter   *routing.StringSetFilter
		haystack []string
	}{
		{"tags", d.Tags, haystackFor(ld, nil)},
		{"languages", d.Languages, haystackFor(ld, func(l *lead.Lead) []string { return l.Languages })},
		{"ethnicities", d.Ethnicities, haystackFor(ld, func(l *lead.Lead) []string { return l.Ethnicities })},
	}

	for _, f := range filters {
		if f.filter == nil {
			continue
		}
		if detail := matchStringSet(f.name, f.filter, f.haystack); detail != "" {
			check.Detail = detail
			return check
		}
	}

	check.Passed = true
	return check
}

// haystackFor unions the selected lead values with the lead's tags,
// since tags double as cross-cutting labels.
func haystackFor(ld *lead.Lead, pick func(*lead.Lead) []string) []string {
	if ld == nil {
		return nil
	}
	if pick == nil {
		return ld.Haystack(nil)
	}
	return ld.Haystack(pick(ld))
}

// matchStringSet applies exclude-then-include semantics and returns a
// failure detail, or "" on pass.
func matchStringSet(name string, f *routing.StringSetFilter, haystack []string) string {
	for _, excluded := range f.Exclude {
		if containsFold(haystack, strings.ToLower(strings.TrimSpace(excluded))) {
			return fmt.Sprintf("%s filter excludes %q", name, excluded)
		}
	}
	if len(f.Include) == 0 {
		return ""
	}

	matches := 0
	for _, included := range f.Include {
		if containsFold(haystack, strings.ToLower(strings.TrimSpace(included))) {
			matches++
		}
	}

	switch f.Mode() {
	case routing.MatchAll:
		if matches < len(f.Include) {
			return fmt.Sprintf("%s filter requires all of %v", name, f.Include)
		}
	default: // ANY
		if matches == 0 {
			return fmt.Sprintf("%s filter requires at least one of %v", name, f.Include)
		}
	}
	return ""
}

func checkCustomFields(conds []routing.CustomFieldCondition, ld *lead.Lead) CheckResult {
	check := CheckResult{Key: "customFields"}

	var fields map[string]interface{}
	if ld != nil {
		fields = ld.CustomFields
	}

	for _, cf := range conds {
		if detail := evalCustomField(cf, fields); detail != "" {
			check.Detail = detail
			return check
		}
	}

	check.Passed = true
	return check
}

// evalCustomField returns a failure detail, or "" when the predicate
// passes. Coercion failures fail the predicate, never panic.
func evalCustomField(cf routing.CustomFieldCondition, fields map[string]interface{}) string {
	value, exists := fields[cf.Key]
	if value == nil {
		exists = false
	}

	switch cf.Operator {
	case routing.OpExists:
		if !exists {
			return fmt.Sprintf("custom field %q does not exist", cf.Key)
		}
		return ""
	case routing.OpNotExists:
		if exists {
			return fmt.Sprintf("custom field %q exists", cf.Key)
		}
		return ""
	}

	if !exists {
		return fmt.Sprintf("custom field %q is missing", cf.Key)
	}

	switch cf.Operator {
	case routing.OpEquals:
		if !looseEquals(value, cf.Value) {
			return fmt.Sprintf("custom field %q = %v does not equal %v", cf.Key, value, cf.Value)
		}
	case routing.OpNotEquals:
		if looseEquals(value, cf.Value) {
			return fmt.Sprintf("custom field %q equals excluded value %v", cf.Key, cf.Value)
		}
	case routing.OpIn:
		if !intersects(toSlice(value), toSlice(cf.Value)) {
			return fmt.Sprintf("custom field %q = %v is not in %v", cf.Key, value, cf.Value)
		}
	case routing.OpNotIn:
		if intersects(toSlice(value), toSlice(cf.Value)) {
			return fmt.Sprintf("custom field %q = %v is in excluded set %v", cf.Key, value, cf.Value)
		}
	case routing.OpGT, routing.OpGTE, routing.OpLT, routing.OpLTE:
		left, lok := toNumber(value)
		right, rok := toNumber(cf.Value)
		if !lok || !rok {
			return fmt.Sprintf("custom field %q: %v and %v are not numerically comparable", cf.Key, value, cf.Value)
		}
		var pass bool
		switch cf.Operator {
		case routing.OpGT:
			pass = left > right
		case routing.OpGTE:
			pass = left >= right
		case routing.OpLT:
			pass = left < right
		case routing.OpLTE:
			pass = left <= right
		}
		if !pass {
			return fmt.Sprintf("custom field %q = %v fails %s %v", cf.Key, value, cf.Operator, cf.Value)
		}
	case routing.OpContains:
		ok, comparable := containsValue(value, cf.Value)
		if !comparable {
			return fmt.Sprintf("custom field %q = %v does not support CONTAINS", cf.Key, value)
		}
		if !ok {
			return fmt.Sprintf("custom field %q = %v does not contain %v", cf.Key, value, cf.Value)
		}
	case routing.OpNotContains:
		ok, comparable := containsValue(value, cf.Value)
		if !comparable {
			return fmt.Sprintf("custom field %q = %v does not support NOT_CONTAINS", cf.Key, value)
		}
		if ok {
			return fmt.Sprintf("custom field %q = %v contains excluded %v", cf.Key, value, cf.Value)
		}
	default:
		return fmt.Sprintf("custom field %q: unsupported operator %s", cf.Key, cf.Operator)
	}

	return ""
}

// looseEquals compares case-insensitively for strings, numerically for
// numbers, exactly for booleans, and structurally otherwise.
func looseEquals(a, b interface{}) bool {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.EqualFold(strings.TrimSpace(as), strings.TrimSpace(bs))
		}
	}
	if an, aok := toNumber(a); aok {
		if bn, bok := toNumber(b); bok {
			return an == bn
		}
		return false
	}
	if ab, ok := a.(bool); ok {
		bb, ok2 := b.(bool)
		return ok2 && ab == bb
	}
	return reflect.DeepEqual(a, b)
}

// toNumber coerces numeric types and numeric strings to float64
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toSlice wraps scalars into a single-element slice
func toSlice(v interface{}) []interface{} {
	if v == nil {
		return nil
	}
	if s, ok := v.([]interface{}); ok {
		return s
	}
	if s, ok := v.([]string); ok {
		out := make([]interface{}, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return []interface{}{v}
}

func intersects(a, b []interface{}) bool {
	for _, av := range a {
		for _, bv := range b {
			if looseEquals(av, bv) {
				return true
			}
		}
	}
	return false
}

// containsValue implements CONTAINS: substring match for strings,
// element equality for slices. The second return reports whether the
// haystack type supports containment at all.
func containsValue(haystack, needle interface{}) (found, comparable bool) {
	switch h := haystack.(type) {
	case string:
		ns, ok := needle.(string)
		if !ok {
			return false, false
		}
		return strings.Contains(strings.ToLower(h), strings.ToLower(ns)), true
	case []interface{}:
		for _, e := range h {
			if looseEquals(e, needle) {
				return true, true
			}
		}
		return false, true
	case []string:
		for _, e := range h {
			if looseEquals(e, needle) {
				return true, true
			}
		}
		return false, true
	default:
		return false, false
	}
}

func containsFold(list []string, lowered string) bool {
	for _, v := range list {
		if strings.ToLower(strings.TrimSpace(v)) == lowered {
			return true
		}
	}
	return false
}
