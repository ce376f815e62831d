// Package policy turns natural-language policy text into executable rule
// sets and persists them. Parsing is pluggable: a deterministic stub keeps
// the system fully functional offline, and an llm-backed parser produces
// richer rules when a generator is configured.
package policy

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/govmesh/govmesh/core"
)

// Parser converts policy text into a structured rule set.
type Parser interface {
	Parse(ctx context.Context, policyID, text string) (core.RuleSet, error)
}

// fieldHint maps a keyword found in policy text to a field declaration.
type fieldHint struct {
	keyword string
	field   string
	typ     core.FieldType
}

// Order matters: hints are matched and emitted in this order so parsing is
// deterministic for a given text.
var fieldHints = []fieldHint{
	{"email", "email", core.TypeEmail},
	{"phone", "phone", core.TypePhone},
	{"name", "name", core.TypeString},
	{"age", "age", core.TypeInteger},
	{"amount", "amount", core.TypeNumber},
	{"address", "address", core.TypeString},
	{"country", "country", core.TypeString},
	{"document", "documents", core.TypeArray},
}

var (
	minRe = regexp.MustCompile(`(?i)(?:at least|minimum(?: of)?|min)\s+(\d+(?:\.\d+)?)`)
	maxRe = regexp.MustCompile(`(?i)(?:at most|maximum(?: of)?|max|not exceed)\s+(\d+(?:\.\d+)?)`)
)

// StubParser extracts rules from policy text with keyword and regex
// matching only. Identical text always yields an identical rule set, which
// makes the whole pipeline testable without any external collaborator.
type StubParser struct{}

// NewStubParser creates a StubParser.
func NewStubParser() *StubParser { return &StubParser{} }

// Parse implements Parser. Each sentence mentioning a known field keyword
// contributes one rule; "must" or "required" marks the rule required, and
// "at least N" / "at most N" phrases become numeric bounds. Text with no
// recognizable fields falls back to a single required object rule so a
// policy is never silently empty.
func (p *StubParser) Parse(_ context.Context, policyID, text string) (core.RuleSet, error) {
	lower := strings.ToLower(text)
	sentences := splitSentences(lower)

	var rules []core.Rule
	seen := make(map[string]struct{})

	for _, hint := range fieldHints {
		if !strings.Contains(lower, hint.keyword) {
			continue
		}
		if _, dup := seen[hint.field]; dup {
			continue
		}
		seen[hint.field] = struct{}{}

		rule := core.Rule{Field: hint.field, Type: hint.typ}
		for _, sentence := range sentences {
			if !strings.Contains(sentence, hint.keyword) {
				continue
			}
			if strings.Contains(sentence, "must") || strings.Contains(sentence, "required") {
				rule.Required = true
			}
			if m := minRe.FindStringSubmatch(sentence); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					rule.Constraints.Min = &v
				}
			}
			if m := maxRe.FindStringSubmatch(sentence); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					rule.Constraints.Max = &v
				}
			}
		}
		rules = append(rules, rule)
	}

	if len(rules) == 0 {
		rules = []core.Rule{{Field: "data", Type: core.TypeObject, Required: true}}
	}

	rs := core.RuleSet{
		PolicyID:  policyID,
		Version:   1,
		Rules:     rules,
		CreatedAt: time.Now().UTC(),
	}
	if err := rs.Validate(); err != nil {
		return core.RuleSet{}, err
	}
	return rs, nil
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == ';' || r == '\n'
	})
}
