package core

import (
	"regexp"
	"time"
)

// FieldType enumerates the declared types a rule can require. Email and
// phone are string types with a built-in format pattern applied by the
// validation engine.
type FieldType string

const (
	// TypeString matches any string value.
	TypeString FieldType = "string"
	// TypeInteger matches whole numbers (including float64 values that are
	// exact integers, as produced by JSON decoding).
	TypeInteger FieldType = "integer"
	// TypeNumber matches any numeric value.
	TypeNumber FieldType = "number"
	// TypeBoolean matches bool values.
	TypeBoolean FieldType = "boolean"
	// TypeArray matches slice values.
	TypeArray FieldType = "array"
	// TypeObject matches map values.
	TypeObject FieldType = "object"
	// TypeEmail is a string constrained to email format.
	TypeEmail FieldType = "email"
	// TypePhone is a string constrained to phone format.
	TypePhone FieldType = "phone"
)

// KnownFieldType reports whether t is one of the declared field types.
func KnownFieldType(t FieldType) bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeEmail, TypePhone:
		return true
	default:
		return false
	}
}

// Constraints narrows the accepted values for a field whose type already
// matched. Nil pointers mean "not constrained".
type Constraints struct {
	Min      *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinItems *int     `json:"min_items,omitempty" yaml:"min_items,omitempty"`
	MaxItems *int     `json:"max_items,omitempty" yaml:"max_items,omitempty"`
	Pattern  string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// Rule declares the expectations for a single record field.
type Rule struct {
	Field       string      `json:"field" yaml:"field"`
	Type        FieldType   `json:"type" yaml:"type"`
	Required    bool        `json:"required" yaml:"required"`
	Constraints Constraints `json:"constraints" yaml:"constraints"`
}

// RuleSet is the structured, executable form of a policy. Immutable once
// registered: a new version is a new RuleSet, never an in-place edit.
type RuleSet struct {
	PolicyID  string    `json:"policy_id" yaml:"policy_id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Version   int       `json:"version" yaml:"version"`
	Rules     []Rule    `json:"rules" yaml:"rules"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Validate checks structural soundness: non-empty unique field names, known
// types, coherent constraints, and compilable patterns. It returns a
// KindInvalidRuleDefinition error naming the first problem found.
func (rs RuleSet) Validate() error {
	if len(rs.Rules) == 0 {
		return NewError(KindInvalidRuleDefinition, "rule set %q has no rules", rs.PolicyID)
	}
	seen := make(map[string]struct{}, len(rs.Rules))
	for i, r := range rs.Rules {
		if r.Field == "" {
			return NewError(KindInvalidRuleDefinition, "rule %d has no field name", i)
		}
		if _, dup := seen[r.Field]; dup {
			return NewError(KindInvalidRuleDefinition, "duplicate rule for field %q", r.Field)
		}
		seen[r.Field] = struct{}{}
		if !KnownFieldType(r.Type) {
			return NewError(KindInvalidRuleDefinition, "field %q has unknown type %q", r.Field, r.Type)
		}
		c := r.Constraints
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return NewError(KindInvalidRuleDefinition, "field %q has min %v above max %v", r.Field, *c.Min, *c.Max)
		}
		if c.MinItems != nil && c.MaxItems != nil && *c.MinItems > *c.MaxItems {
			return NewError(KindInvalidRuleDefinition, "field %q has min_items %d above max_items %d", r.Field, *c.MinItems, *c.MaxItems)
		}
		if c.Pattern != "" {
			if _, err := regexp.Compile(c.Pattern); err != nil {
				return WrapError(KindInvalidRuleDefinition, err, "field %q has invalid pattern", r.Field)
			}
		}
	}
	return nil
}

// Record is the key/value mapping under validation. The engine never
// mutates it.
type Record map[string]any
