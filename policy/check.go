package policy

import (
	"fmt"
	"regexp"

	"github.com/govmesh/govmesh/core"
)

// Check reports every structural problem in a rule set. Unlike
// core.RuleSet.Validate, which stops at the first defect, Check collects all
// of them so authors can fix a policy in one pass. An empty slice means the
// rule set is well formed.
func Check(rs core.RuleSet) []string {
	issues := make([]string, 0)

	if rs.PolicyID == "" {
		issues = append(issues, "policy id is empty")
	}
	if len(rs.Rules) == 0 {
		issues = append(issues, "rule set has no rules")
	}

	seen := make(map[string]struct{}, len(rs.Rules))
	for i, r := range rs.Rules {
		if r.Field == "" {
			issues = append(issues, fmt.Sprintf("rule %d has no field name", i))
			continue
		}
		if _, dup := seen[r.Field]; dup {
			issues = append(issues, fmt.Sprintf("duplicate rule for field %q", r.Field))
		}
		seen[r.Field] = struct{}{}

		if !core.KnownFieldType(r.Type) {
			issues = append(issues, fmt.Sprintf("field %q has unknown type %q", r.Field, r.Type))
		}

		c := r.Constraints
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			issues = append(issues, fmt.Sprintf("field %q has min %v above max %v", r.Field, *c.Min, *c.Max))
		}
		if c.MinItems != nil && c.MaxItems != nil && *c.MinItems > *c.MaxItems {
			issues = append(issues, fmt.Sprintf("field %q has min_items %d above max_items %d", r.Field, *c.MinItems, *c.MaxItems))
		}
		if c.Pattern != "" {
			if _, err := regexp.Compile(c.Pattern); err != nil {
				issues = append(issues, fmt.Sprintf("field %q has invalid pattern: %v", r.Field, err))
			}
		}
	}

	return issues
}
