package schema

import (
	"fmt"
	"sort"

	"github.com/govmesh/govmesh/core"
)

// DetectDrift compares two schema versions and reports every structural
// difference. Fields are visited in sorted name order so repeat runs on the
// same pair produce identical results; comparing a version with itself
// yields no drift.
//
// A change is breaking when data written under one version cannot be read
// under the other without intervention: removed fields, changed types, and
// newly required fields lacking a backfill default.
func DetectDrift(old, next Version) DriftResult {
	changes := make([]Change, 0)

	for _, field := range sortedFields(next.Properties) {
		newType := next.Properties[field]
		oldType, existed := old.Properties[field]
		if !existed {
			impact := ImpactLow
			if next.IsRequired(field) {
				impact = ImpactMedium
			}
			changes = append(changes, Change{
				Kind:     ChangeFieldAdded,
				Field:    field,
				Impact:   impact,
				To:       newType,
				Required: next.IsRequired(field),
				Detail:   fmt.Sprintf("field %q added with type %s", field, newType),
			})
			continue
		}
		if oldType != newType {
			changes = append(changes, Change{
				Kind:   ChangeTypeChanged,
				Field:  field,
				Impact: ImpactHigh,
				From:   oldType,
				To:     newType,
				Detail: fmt.Sprintf("field %q changed type from %s to %s", field, oldType, newType),
			})
		}
		if old.IsRequired(field) != next.IsRequired(field) {
			changes = append(changes, Change{
				Kind:     ChangeRequiredChanged,
				Field:    field,
				Impact:   ImpactMedium,
				Required: next.IsRequired(field),
				Detail:   fmt.Sprintf("field %q required flag changed to %t", field, next.IsRequired(field)),
			})
		}
	}

	for _, field := range sortedFields(old.Properties) {
		if _, stillThere := next.Properties[field]; stillThere {
			continue
		}
		changes = append(changes, Change{
			Kind:   ChangeFieldRemoved,
			Field:  field,
			Impact: ImpactHigh,
			From:   old.Properties[field],
			Detail: fmt.Sprintf("field %q removed", field),
		})
	}

	return DriftResult{
		HasDrift:  len(changes) > 0,
		Breaking:  anyBreaking(old, next, changes),
		RiskLevel: maxImpact(changes),
		Changes:   changes,
	}
}

func anyBreaking(old, next Version, changes []Change) bool {
	for _, c := range changes {
		switch c.Kind {
		case ChangeFieldRemoved, ChangeTypeChanged:
			return true
		case ChangeFieldAdded:
			if c.Required && !next.HasDefault(c.Field) {
				return true
			}
		case ChangeRequiredChanged:
			if c.Required && !next.HasDefault(c.Field) {
				return true
			}
		}
	}
	return false
}

func maxImpact(changes []Change) Impact {
	level := ImpactLow
	for _, c := range changes {
		if c.Impact.rank() > level.rank() {
			level = c.Impact
		}
	}
	return level
}

func sortedFields(props map[string]core.FieldType) []string {
	fields := make([]string, 0, len(props))
	for f := range props {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
