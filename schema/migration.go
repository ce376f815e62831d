package schema

import (
	"fmt"
	"time"
)

// StepDuration is the per-step planning estimate for a migration.
const StepDuration = 5 * time.Minute

// GenerateMigration turns a drift result into an ordered migration plan with
// a symmetric rollback: rollback step i undoes forward step i, applied in
// reverse order. Required-flag flips on existing fields become NOT NULL
// toggles rather than data rewrites.
func GenerateMigration(drift DriftResult) MigrationPlan {
	steps := make([]MigrationStep, 0, len(drift.Changes))
	rollback := make([]MigrationStep, 0, len(drift.Changes))
	prereqs := make([]string, 0)

	if drift.Breaking {
		prereqs = append(prereqs, "take a full table backup before applying")
	}

	for _, c := range drift.Changes {
		switch c.Kind {
		case ChangeFieldAdded:
			steps = append(steps, MigrationStep{
				Op: OpAddColumn, Field: c.Field, Type: c.To,
				Detail: fmt.Sprintf("add column %q of type %s", c.Field, c.To),
			})
			rollback = append(rollback, MigrationStep{
				Op: OpDropColumn, Field: c.Field,
				Detail: fmt.Sprintf("drop column %q", c.Field),
			})
		case ChangeFieldRemoved:
			prereqs = append(prereqs, fmt.Sprintf("archive data for column %q", c.Field))
			steps = append(steps, MigrationStep{
				Op: OpDropColumn, Field: c.Field,
				Detail: fmt.Sprintf("drop column %q after backing up its data", c.Field),
			})
			rollback = append(rollback, MigrationStep{
				Op: OpAddColumn, Field: c.Field, Type: c.From,
				Detail: fmt.Sprintf("restore column %q of type %s", c.Field, c.From),
			})
		case ChangeTypeChanged:
			steps = append(steps, MigrationStep{
				Op: OpAlterColumnType, Field: c.Field, Type: c.To,
				Detail: fmt.Sprintf("alter column %q from %s to %s", c.Field, c.From, c.To),
			})
			rollback = append(rollback, MigrationStep{
				Op: OpAlterColumnType, Field: c.Field, Type: c.From,
				Detail: fmt.Sprintf("alter column %q back to %s", c.Field, c.From),
			})
		case ChangeRequiredChanged:
			if c.Required {
				steps = append(steps, MigrationStep{
					Op: OpSetNotNull, Field: c.Field,
					Detail: fmt.Sprintf("mark column %q NOT NULL", c.Field),
				})
				rollback = append(rollback, MigrationStep{
					Op: OpDropNotNull, Field: c.Field,
					Detail: fmt.Sprintf("relax column %q to nullable", c.Field),
				})
			} else {
				steps = append(steps, MigrationStep{
					Op: OpDropNotNull, Field: c.Field,
					Detail: fmt.Sprintf("relax column %q to nullable", c.Field),
				})
				rollback = append(rollback, MigrationStep{
					Op: OpSetNotNull, Field: c.Field,
					Detail: fmt.Sprintf("mark column %q NOT NULL", c.Field),
				})
			}
		}
	}

	reverse(rollback)

	return MigrationPlan{
		Steps:             steps,
		Rollback:          rollback,
		Prerequisites:     prereqs,
		EstimatedDuration: time.Duration(len(steps)) * StepDuration,
		Breaking:          drift.Breaking,
	}
}

func reverse(steps []MigrationStep) {
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
}
