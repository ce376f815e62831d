package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/govmesh/govmesh/core"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?1?-?\.?\s?\(?(\d{3})\)?[\s.-]?(\d{3})[\s.-]?(\d{4})$`)
)

// Engine evaluates rule sets, KYC completeness and transaction risk using a
// fixed configuration. It holds no mutable state and is safe for concurrent
// use.
type Engine struct {
	cfg Config
	now func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source; used by expiry checks and tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine with the given configuration.
func NewEngine(cfg Config, optFns ...Option) *Engine {
	e := &Engine{cfg: cfg, now: time.Now}
	for _, fn := range optFns {
		fn(e)
	}
	return e
}

// Evaluate checks record against every rule in declaration order and derives
// a deterministic score. The record is never mutated; malformed values
// produce violations, never errors.
//
// Severity model: missing required fields and type mismatches are high.
// Constraint and pattern failures are high on required fields and medium on
// optional ones, so a fully broken required field weighs like a missing one.
func (e *Engine) Evaluate(rs core.RuleSet, rec core.Record) Result {
	violations := make([]Violation, 0)
	warnings := make([]Violation, 0)

	for _, rule := range rs.Rules {
		value, present := rec[rule.Field]
		if !present {
			if rule.Required {
				violations = append(violations, Violation{
					Field:    rule.Field,
					Kind:     KindMissingRequired,
					Severity: SeverityHigh,
					Message:  fmt.Sprintf("required field %q is missing", rule.Field),
				})
			}
			continue
		}

		if !matchesType(value, rule.Type) {
			violations = append(violations, Violation{
				Field:    rule.Field,
				Kind:     KindInvalidType,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("field %q should be of type %s", rule.Field, rule.Type),
			})
			continue
		}

		violations = append(violations, e.checkConstraints(rule, value)...)
	}

	score := e.score(len(rs.Rules), violations)
	return Result{
		IsValid:    len(violations) == 0,
		Score:      score,
		Violations: violations,
		Warnings:   warnings,
	}
}

// checkConstraints applies range, length and pattern constraints in that
// order for a value whose type already matched.
func (e *Engine) checkConstraints(rule core.Rule, value any) []Violation {
	sev := SeverityMedium
	if rule.Required {
		sev = SeverityHigh
	}

	var out []Violation
	c := rule.Constraints

	if n, ok := asFloat(value); ok {
		if c.Min != nil && n < *c.Min {
			out = append(out, Violation{
				Field: rule.Field, Kind: KindConstraintViolation, Severity: sev,
				Message: fmt.Sprintf("field %q value %v is below minimum %v", rule.Field, n, *c.Min),
			})
		}
		if c.Max != nil && n > *c.Max {
			out = append(out, Violation{
				Field: rule.Field, Kind: KindConstraintViolation, Severity: sev,
				Message: fmt.Sprintf("field %q value %v is above maximum %v", rule.Field, n, *c.Max),
			})
		}
	}

	if length, ok := arrayLen(value); ok {
		if c.MinItems != nil && length < *c.MinItems {
			out = append(out, Violation{
				Field: rule.Field, Kind: KindConstraintViolation, Severity: sev,
				Message: fmt.Sprintf("field %q has %d items, minimum is %d", rule.Field, length, *c.MinItems),
			})
		}
		if c.MaxItems != nil && length > *c.MaxItems {
			out = append(out, Violation{
				Field: rule.Field, Kind: KindConstraintViolation, Severity: sev,
				Message: fmt.Sprintf("field %q has %d items, maximum is %d", rule.Field, length, *c.MaxItems),
			})
		}
	}

	if pattern := patternFor(rule); pattern != nil {
		if s, ok := value.(string); ok && !pattern.MatchString(s) {
			out = append(out, Violation{
				Field: rule.Field, Kind: KindPatternMismatch, Severity: sev,
				Message: fmt.Sprintf("field %q does not match the expected %s format", rule.Field, rule.Type),
			})
		}
	}

	return out
}

// score derives 1 - sum(weights)/max(1, ruleCount), clamped to [0,1]. The
// formula is independent of evaluation order and monotonically non-increasing
// as violations accumulate.
func (e *Engine) score(ruleCount int, violations []Violation) float64 {
	var penalty float64
	for _, v := range violations {
		penalty += e.cfg.Weights.For(v.Severity)
	}
	denom := float64(ruleCount)
	if denom < 1 {
		denom = 1
	}
	return clamp(1 - penalty/denom)
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// patternFor returns the regex applicable to rule, preferring an explicit
// constraint pattern over the built-in email/phone formats.
func patternFor(rule core.Rule) *regexp.Regexp {
	if rule.Constraints.Pattern != "" {
		// Already validated by RuleSet.Validate; a bad pattern here means an
		// unchecked rule set, treat as no constraint.
		if re, err := regexp.Compile(rule.Constraints.Pattern); err == nil {
			return re
		}
		return nil
	}
	switch rule.Type {
	case core.TypeEmail:
		return emailPattern
	case core.TypePhone:
		return phonePattern
	default:
		return nil
	}
}

// matchesType reports whether value satisfies the declared field type.
// Numeric checks accept every Go numeric kind; integer additionally accepts
// float64 values that are exact integers, matching JSON decoding behavior.
func matchesType(value any, t core.FieldType) bool {
	if value == nil {
		return false
	}
	switch t {
	case core.TypeString, core.TypeEmail, core.TypePhone:
		_, ok := value.(string)
		return ok
	case core.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case core.TypeInteger:
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return v == float64(int64(v))
		case float32:
			return v == float32(int32(v))
		default:
			return false
		}
	case core.TypeNumber:
		_, ok := asFloat(value)
		return ok
	case core.TypeArray:
		k := reflect.ValueOf(value).Kind()
		return k == reflect.Slice || k == reflect.Array
	case core.TypeObject:
		return reflect.ValueOf(value).Kind() == reflect.Map
	default:
		return false
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func arrayLen(value any) (int, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), true
	}
	return 0, false
}
