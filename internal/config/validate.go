package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Rule identifiers carried by ValidationError.
const (
	RuleMissingKey     = "missing_key"
	RuleTypeMismatch   = "type_mismatch"
	RuleEnumMismatch   = "enum_mismatch"
	RuleEmptyList      = "empty_list"
	RuleLengthMismatch = "length_mismatch"
	RuleBoundsInvalid  = "bounds_invalid"
	RuleOutOfRange     = "out_of_range"
)

// ValidationError reports the first check a candidate configuration failed,
// as a field path (e.g. constraints.cost) and a short rule identifier.
type ValidationError struct {
	FieldPath string
	Rule      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldPath, e.Rule)
}

func fail(path, rule string) *ValidationError {
	return &ValidationError{FieldPath: path, Rule: rule}
}

var (
	transactionTypes = []string{"RENT", "SALE", "SHARING"}
	houseTypes       = []string{"APART", "HOUSE", "PARKING", "LAND", "OTHER", "UNKNOWN"}
)

// configChecks are run in order; validation stops at the first failure.
var configChecks = []func(map[string]any) *ValidationError{
	checkTransactionType,
	checkHouseTypes,
	checkPostalCodes,
	checkNumericConstraints,
	checkTimeTo,
	checkPasses,
	checkMaxEntries,
	checkPaths,
	checkServer,
}

// Validate checks a candidate configuration mapping against the schema:
// required keys, value types, enum membership, list non-emptiness, and
// bound-pair validity. It returns nil on success, or a *ValidationError
// locating the first failing check. Malformed shapes never panic; they are
// reported as validation failures like any other.
func Validate(cfg map[string]any) error {
	for _, check := range configChecks {
		if verr := check(cfg); verr != nil {
			return verr
		}
	}
	return nil
}

// constraintsOf fetches the nested constraints block, failing when it is
// absent or not an object.
func constraintsOf(cfg map[string]any) (map[string]any, *ValidationError) {
	value, present := cfg["constraints"]
	if !present {
		return nil, fail("constraints", RuleMissingKey)
	}
	block, ok := value.(map[string]any)
	if !ok {
		return nil, fail("constraints", RuleTypeMismatch)
	}
	return block, nil
}

func checkTransactionType(cfg map[string]any) *ValidationError {
	constraints, verr := constraintsOf(cfg)
	if verr != nil {
		return verr
	}
	value, present := constraints["type"]
	if !present {
		return fail("constraints.type", RuleMissingKey)
	}
	s, ok := value.(string)
	if !ok {
		return fail("constraints.type", RuleTypeMismatch)
	}
	if !containsFold(transactionTypes, s) {
		return fail("constraints.type", RuleEnumMismatch)
	}
	return nil
}

func checkHouseTypes(cfg map[string]any) *ValidationError {
	constraints, verr := constraintsOf(cfg)
	if verr != nil {
		return verr
	}
	value, present := constraints["house_types"]
	if !present {
		return fail("constraints.house_types", RuleMissingKey)
	}
	items, ok := value.([]any)
	if !ok {
		return fail("constraints.house_types", RuleTypeMismatch)
	}
	if len(items) == 0 {
		return fail("constraints.house_types", RuleEmptyList)
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return fail("constraints.house_types", RuleTypeMismatch)
		}
		if !containsFold(houseTypes, s) {
			return fail("constraints.house_types", RuleEnumMismatch)
		}
	}
	return nil
}

func checkPostalCodes(cfg map[string]any) *ValidationError {
	constraints, verr := constraintsOf(cfg)
	if verr != nil {
		return verr
	}
	value, present := constraints["postal_codes"]
	if !present {
		return fail("constraints.postal_codes", RuleMissingKey)
	}
	items, ok := value.([]any)
	if !ok {
		return fail("constraints.postal_codes", RuleTypeMismatch)
	}
	if len(items) == 0 {
		return fail("constraints.postal_codes", RuleEmptyList)
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return fail("constraints.postal_codes", RuleTypeMismatch)
		}
	}
	return nil
}

func checkNumericConstraints(cfg map[string]any) *ValidationError {
	constraints, verr := constraintsOf(cfg)
	if verr != nil {
		return verr
	}
	for _, key := range []string{"area", "cost", "rooms", "bedrooms"} {
		value, present := constraints[key]
		if !present {
			return fail("constraints."+key, RuleMissingKey)
		}
		if verr := checkBounds("constraints."+key, value); verr != nil {
			return verr
		}
	}
	return nil
}

func checkTimeTo(cfg map[string]any) *ValidationError {
	constraints, verr := constraintsOf(cfg)
	if verr != nil {
		return verr
	}
	value, present := constraints["time_to"]
	if !present {
		return fail("constraints.time_to", RuleMissingKey)
	}
	entries, ok := value.(map[string]any)
	if !ok {
		return fail("constraints.time_to", RuleTypeMismatch)
	}
	for name, raw := range entries {
		path := fmt.Sprintf("constraints.time_to[%q]", name)
		entry, ok := raw.(map[string]any)
		if !ok {
			return fail(path, RuleTypeMismatch)
		}

		gps, present := entry["gps"]
		if !present {
			return fail(path+".gps", RuleMissingKey)
		}
		coords, ok := gps.([]any)
		if !ok {
			return fail(path+".gps", RuleTypeMismatch)
		}
		if len(coords) != 2 {
			return fail(path+".gps", RuleLengthMismatch)
		}
		for _, coord := range coords {
			if _, ok := asNumber(coord); !ok {
				return fail(path+".gps", RuleTypeMismatch)
			}
		}

		tv, present := entry["time"]
		if !present {
			return fail(path+".time", RuleMissingKey)
		}
		if verr := checkBounds(path+".time", tv); verr != nil {
			return verr
		}
	}
	return nil
}

func checkPasses(cfg map[string]any) *ValidationError {
	value, present := cfg["passes"]
	if !present {
		return fail("passes", RuleMissingKey)
	}
	n, ok := asInt(value)
	if !ok {
		return fail("passes", RuleTypeMismatch)
	}
	if n < 0 || n > 3 {
		return fail("passes", RuleOutOfRange)
	}
	return nil
}

func checkMaxEntries(cfg map[string]any) *ValidationError {
	value, present := cfg["max_entries"]
	if !present {
		return fail("max_entries", RuleMissingKey)
	}
	if value == nil {
		return nil
	}
	n, ok := asInt(value)
	if !ok {
		return fail("max_entries", RuleTypeMismatch)
	}
	if n <= 0 {
		return fail("max_entries", RuleOutOfRange)
	}
	return nil
}

func checkPaths(cfg map[string]any) *ValidationError {
	if verr := checkOptionalString(cfg, "data_directory"); verr != nil {
		return verr
	}

	// search_index is required by the time validation runs; the resolver
	// derives it from data_directory when the file left it unset.
	value, present := cfg["search_index"]
	if !present {
		return fail("search_index", RuleMissingKey)
	}
	if _, ok := value.(string); !ok {
		return fail("search_index", RuleTypeMismatch)
	}

	if verr := checkOptionalString(cfg, "modules_path"); verr != nil {
		return verr
	}
	return checkOptionalString(cfg, "database")
}

func checkServer(cfg map[string]any) *ValidationError {
	value, present := cfg["port"]
	if !present {
		return fail("port", RuleMissingKey)
	}
	if _, ok := asInt(value); !ok {
		return fail("port", RuleTypeMismatch)
	}

	value, present = cfg["host"]
	if !present {
		return fail("host", RuleMissingKey)
	}
	if _, ok := value.(string); !ok {
		return fail("host", RuleTypeMismatch)
	}

	if verr := checkOptionalString(cfg, "webserver"); verr != nil {
		return verr
	}

	value, present = cfg["backends"]
	if !present {
		return fail("backends", RuleMissingKey)
	}
	if value == nil {
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		return fail("backends", RuleTypeMismatch)
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return fail("backends", RuleTypeMismatch)
		}
	}
	return nil
}

// checkBounds validates a (min, max) pair: exactly two elements, each nil or
// a non-negative number, and max strictly greater than min when both are set.
// The same check applies to area, cost, rooms, bedrooms, and every
// time_to[*].time field.
func checkBounds(path string, value any) *ValidationError {
	bounds, ok := value.([]any)
	if !ok {
		return fail(path, RuleTypeMismatch)
	}
	if len(bounds) != 2 {
		return fail(path, RuleLengthMismatch)
	}
	for _, b := range bounds {
		if b == nil {
			continue
		}
		n, ok := asNumber(b)
		if !ok || n < 0 {
			return fail(path, RuleBoundsInvalid)
		}
	}
	if bounds[0] != nil && bounds[1] != nil {
		lo, _ := asNumber(bounds[0])
		hi, _ := asNumber(bounds[1])
		if hi <= lo {
			return fail(path, RuleBoundsInvalid)
		}
	}
	return nil
}

func checkOptionalString(cfg map[string]any, key string) *ValidationError {
	value, present := cfg[key]
	if !present {
		return fail(key, RuleMissingKey)
	}
	if value == nil {
		return nil
	}
	if _, ok := value.(string); !ok {
		return fail(key, RuleTypeMismatch)
	}
	return nil
}

func containsFold(valid []string, s string) bool {
	return slices.Contains(valid, strings.ToUpper(s))
}

// asNumber accepts the numeric shapes a merged config can contain: float64
// from the JSON decoder and Go integer types from CLI overrides.
func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
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
	default:
		return 0, false
	}
}

// asInt is asNumber restricted to integral values. JSON numbers arrive as
// float64, so 8080.0 counts as an integer while 8080.5 does not.
func asInt(value any) (int, bool) {
	n, ok := asNumber(value)
	if !ok {
		return 0, false
	}
	if n != math.Trunc(n) {
		return 0, false
	}
	return int(n), true
}
