// Package explain turns validation and risk outcomes into human-readable
// explanations and remediation plans. Templates are the authoritative path;
// a configured text generator only enriches the per-violation prose and any
// generator failure silently falls back to the template output.
package explain

import (
	"context"
	"fmt"

	"github.com/govmesh/govmesh/llm"
	"github.com/govmesh/govmesh/logging"
	"github.com/govmesh/govmesh/validation"
)

// ViolationExplanation narrates one violation for a business reader.
type ViolationExplanation struct {
	Field          string              `json:"field"`
	Kind           string              `json:"kind"`
	Severity       validation.Severity `json:"severity"`
	Explanation    string              `json:"explanation"`
	BusinessImpact string              `json:"business_impact"`
	Urgency        string              `json:"urgency"`
	Stakeholders   []string            `json:"stakeholders"`
}

// Report aggregates the explanations for one validation outcome.
type Report struct {
	Explanations []ViolationExplanation `json:"explanations"`
	Summary      string                 `json:"summary"`
	OverallRisk  validation.RiskLevel   `json:"overall_risk"`
	NextSteps    []string               `json:"next_steps"`
}

// RemediationPlan buckets fixes by time horizon.
type RemediationPlan struct {
	ImmediateActions   []string `json:"immediate_actions"`
	ShortTermActions   []string `json:"short_term_actions"`
	LongTermActions    []string `json:"long_term_actions"`
	PreventiveMeasures []string `json:"preventive_measures"`
}

// Explainer builds reports and remediation plans.
type Explainer struct {
	generator llm.Generator
	logger    logging.Logger
}

// Options configure an Explainer.
type Options struct {
	// Generator, when set, enriches per-violation explanations.
	Generator llm.Generator
	Logger    logging.Logger
}

// New creates an Explainer.
func New(optFns ...func(o *Options)) *Explainer {
	opts := Options{Logger: logging.NewDefaultSlogLogger()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Explainer{generator: opts.Generator, logger: opts.Logger}
}

// ExplainViolations narrates every violation of a validation result.
func (e *Explainer) ExplainViolations(ctx context.Context, policyName string, violations []validation.Violation) Report {
	explanations := make([]ViolationExplanation, 0, len(violations))

	for _, v := range violations {
		text := templateExplanation(v)
		if e.generator != nil {
			prompt := fmt.Sprintf(
				"Explain this policy violation in simple business terms.\nPolicy: %s\nField: %s\nViolation: %s\nSeverity: %s\nState what went wrong, why the rule exists, and how to fix it.",
				policyName, v.Field, v.Kind, v.Severity)
			if enriched, err := e.generator.Generate(ctx, prompt); err == nil && enriched != "" {
				text = enriched
			} else if err != nil {
				e.logger.Warn("generator failed, using template explanation", "field", v.Field, "error", err)
			}
		}

		explanations = append(explanations, ViolationExplanation{
			Field:          v.Field,
			Kind:           string(v.Kind),
			Severity:       v.Severity,
			Explanation:    text,
			BusinessImpact: businessImpact(v),
			Urgency:        urgency(v.Severity),
			Stakeholders:   stakeholders(v.Field),
		})
	}

	return Report{
		Explanations: explanations,
		Summary:      summarize(violations),
		OverallRisk:  overallRisk(violations),
		NextSteps:    nextSteps(violations),
	}
}

// Remediate buckets concrete fixes for the violations by time horizon.
func (e *Explainer) Remediate(violations []validation.Violation) RemediationPlan {
	plan := RemediationPlan{
		ImmediateActions:   []string{},
		ShortTermActions:   []string{},
		LongTermActions:    []string{},
		PreventiveMeasures: []string{},
	}

	for _, v := range violations {
		fix := fmt.Sprintf("Correct field %q (%s)", v.Field, v.Kind)
		if v.Severity == validation.SeverityHigh {
			plan.ImmediateActions = append(plan.ImmediateActions, fix)
		} else {
			plan.ShortTermActions = append(plan.ShortTermActions, fix)
		}
	}

	if len(violations) > 0 {
		plan.LongTermActions = append(plan.LongTermActions,
			"Review data intake process for recurring gaps")
		plan.PreventiveMeasures = append(plan.PreventiveMeasures,
			"Validate records at the point of entry",
			"Schedule periodic policy compliance audits")
	}
	return plan
}

// ExplainRisk narrates a risk assessment factor by factor.
func (e *Explainer) ExplainRisk(result validation.RiskResult) string {
	if len(result.Factors) == 0 {
		return fmt.Sprintf("Risk level %s (score %.2f): no contributing risk factors identified. %s.",
			result.Level, result.Score, result.Recommendation)
	}

	text := fmt.Sprintf("Risk level %s (score %.2f) driven by:", result.Level, result.Score)
	for _, f := range result.Factors {
		text += fmt.Sprintf("\n- %s (weight %.2f)", f.Name, f.Weight)
	}
	return text + fmt.Sprintf("\n%s.", result.Recommendation)
}

func templateExplanation(v validation.Violation) string {
	switch v.Kind {
	case validation.KindMissingRequired:
		return fmt.Sprintf("The field %q is required but was not provided.", v.Field)
	case validation.KindInvalidType:
		return fmt.Sprintf("The field %q holds a value of the wrong type.", v.Field)
	case validation.KindConstraintViolation:
		return fmt.Sprintf("The field %q is outside its allowed range or size.", v.Field)
	case validation.KindPatternMismatch:
		return fmt.Sprintf("The field %q does not match the expected format.", v.Field)
	default:
		return fmt.Sprintf("The field %q failed a policy check.", v.Field)
	}
}

func businessImpact(v validation.Violation) string {
	switch {
	case v.Kind == validation.KindMissingRequired && v.Severity == validation.SeverityHigh:
		return "Critical compliance failure - may result in regulatory penalties"
	case v.Kind == validation.KindInvalidType:
		return "Data quality issue - may cause processing errors"
	case v.Kind == validation.KindConstraintViolation && v.Severity == validation.SeverityHigh:
		return "Business rule violation - may impact operations"
	default:
		return "Potential compliance or operational impact"
	}
}

func urgency(s validation.Severity) string {
	switch s {
	case validation.SeverityHigh:
		return "Immediate action required"
	case validation.SeverityMedium:
		return "Address within 24 hours"
	default:
		return "Address within 1 week"
	}
}

func stakeholders(field string) []string {
	switch field {
	case "email":
		return []string{"Data Quality Team", "Customer Service"}
	case "age", "date_of_birth":
		return []string{"Compliance Team", "Legal Department"}
	case "amount", "transaction_amount":
		return []string{"Risk Management", "Finance Team"}
	case "identity_documents", "documents":
		return []string{"KYC Team", "Compliance Officer"}
	default:
		return []string{"Compliance Team"}
	}
}

func summarize(violations []validation.Violation) string {
	high := countSeverity(violations, validation.SeverityHigh)
	return fmt.Sprintf("Found %d violations, %d of which are high severity and require immediate attention.",
		len(violations), high)
}

func overallRisk(violations []validation.Violation) validation.RiskLevel {
	high := countSeverity(violations, validation.SeverityHigh)
	medium := countSeverity(violations, validation.SeverityMedium)
	switch {
	case high > 0:
		return validation.RiskHigh
	case medium > 2:
		return validation.RiskMedium
	default:
		return validation.RiskLow
	}
}

func nextSteps(violations []validation.Violation) []string {
	steps := []string{}
	if countSeverity(violations, validation.SeverityHigh) > 0 {
		steps = append(steps, "Address high-severity violations immediately")
	}
	return append(steps,
		"Review all violation explanations with relevant stakeholders",
		"Implement remediation plan",
		"Monitor for similar issues in the future",
	)
}

func countSeverity(violations []validation.Violation, s validation.Severity) int {
	n := 0
	for _, v := range violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}
