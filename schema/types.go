// Package schema detects drift between schema versions, plans migrations and
// keeps a versioned registry of schema definitions.
package schema

import (
	"time"

	"github.com/govmesh/govmesh/core"
)

// Version is one immutable schema definition. Properties maps field names to
// their declared types; Required lists the mandatory fields; Defaults carries
// backfill values consulted when a field becomes required.
type Version struct {
	Name       string                    `json:"name"`
	Version    string                    `json:"version"`
	Properties map[string]core.FieldType `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
	Defaults   map[string]any            `json:"defaults,omitempty"`
	CreatedAt  time.Time                 `json:"created_at,omitempty"`
}

// IsRequired reports whether field is listed as mandatory.
func (v Version) IsRequired(field string) bool {
	for _, f := range v.Required {
		if f == field {
			return true
		}
	}
	return false
}

// HasDefault reports whether field has a backfill value.
func (v Version) HasDefault(field string) bool {
	_, ok := v.Defaults[field]
	return ok
}

// Impact ranks how disruptive a single change is.
type Impact string

const (
	// ImpactLow marks additive, optional changes.
	ImpactLow Impact = "low"
	// ImpactMedium marks changes needing coordination but not data rewrites.
	ImpactMedium Impact = "medium"
	// ImpactHigh marks changes that can silently corrupt or drop data.
	ImpactHigh Impact = "high"
)

func (i Impact) rank() int {
	switch i {
	case ImpactHigh:
		return 2
	case ImpactMedium:
		return 1
	default:
		return 0
	}
}

// ChangeKind classifies a single structural difference.
type ChangeKind string

const (
	// ChangeFieldAdded means the new version declares a field the old did not.
	ChangeFieldAdded ChangeKind = "field_added"
	// ChangeFieldRemoved means the old version declared a field the new drops.
	ChangeFieldRemoved ChangeKind = "field_removed"
	// ChangeTypeChanged means a field's declared type differs.
	ChangeTypeChanged ChangeKind = "type_changed"
	// ChangeRequiredChanged means a field's required flag flipped.
	ChangeRequiredChanged ChangeKind = "required_changed"
)

// Change is one detected difference between two schema versions.
type Change struct {
	Kind     ChangeKind     `json:"kind"`
	Field    string         `json:"field"`
	Impact   Impact         `json:"impact"`
	From     core.FieldType `json:"from,omitempty"`
	To       core.FieldType `json:"to,omitempty"`
	Required bool           `json:"required,omitempty"`
	Detail   string         `json:"detail"`
}

// DriftResult summarizes all differences between two versions.
type DriftResult struct {
	HasDrift  bool     `json:"has_drift"`
	Breaking  bool     `json:"breaking"`
	RiskLevel Impact   `json:"risk_level"`
	Changes   []Change `json:"changes"`
}

// StepOp names the operation a migration step performs.
type StepOp string

const (
	// OpAddColumn introduces a new column.
	OpAddColumn StepOp = "ADD_COLUMN"
	// OpDropColumn removes a column.
	OpDropColumn StepOp = "DROP_COLUMN"
	// OpAlterColumnType rewrites a column's type.
	OpAlterColumnType StepOp = "ALTER_COLUMN_TYPE"
	// OpSetNotNull marks a column mandatory, backfilling from the default.
	OpSetNotNull StepOp = "SET_NOT_NULL"
	// OpDropNotNull relaxes a mandatory column.
	OpDropNotNull StepOp = "DROP_NOT_NULL"
)

// MigrationStep is one forward or rollback operation.
type MigrationStep struct {
	Op     StepOp         `json:"op"`
	Field  string         `json:"field"`
	Type   core.FieldType `json:"type,omitempty"`
	Detail string         `json:"detail"`
}

// MigrationPlan pairs ordered forward steps with their symmetric rollback.
type MigrationPlan struct {
	Steps    []MigrationStep `json:"steps"`
	Rollback []MigrationStep `json:"rollback"`
	// Prerequisites are manual actions (backups, archives) that must happen
	// before the first step runs.
	Prerequisites     []string      `json:"prerequisites,omitempty"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
	Breaking          bool          `json:"breaking"`
}
