package explain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/llm"
	"github.com/govmesh/govmesh/validation"
)

func sampleViolations() []validation.Violation {
	return []validation.Violation{
		{Field: "email", Kind: validation.KindPatternMismatch, Severity: validation.SeverityHigh, Message: "bad format"},
		{Field: "nickname", Kind: validation.KindConstraintViolation, Severity: validation.SeverityMedium, Message: "too long"},
	}
}

func TestExplainViolationsTemplatePath(t *testing.T) {
	report := New().ExplainViolations(context.Background(), "onboarding", sampleViolations())

	require.Len(t, report.Explanations, 2)
	assert.Contains(t, report.Explanations[0].Explanation, "email")
	assert.Equal(t, "Immediate action required", report.Explanations[0].Urgency)
	assert.Equal(t, []string{"Data Quality Team", "Customer Service"}, report.Explanations[0].Stakeholders)
	assert.Equal(t, "Address within 24 hours", report.Explanations[1].Urgency)

	assert.Equal(t, "Found 2 violations, 1 of which are high severity and require immediate attention.", report.Summary)
	assert.Equal(t, validation.RiskHigh, report.OverallRisk)
	assert.Equal(t, "Address high-severity violations immediately", report.NextSteps[0])
}

func TestExplainViolationsEmpty(t *testing.T) {
	report := New().ExplainViolations(context.Background(), "onboarding", nil)

	assert.Empty(t, report.Explanations)
	assert.Equal(t, validation.RiskLow, report.OverallRisk)
	assert.NotEmpty(t, report.NextSteps)
}

func TestExplainViolationsGeneratorEnriches(t *testing.T) {
	gen := llm.NewMockGenerator()
	gen.SetFallback("The email address is not valid; ask the customer to re-enter it.")
	e := New(func(o *Options) { o.Generator = gen })

	report := e.ExplainViolations(context.Background(), "onboarding", sampleViolations()[:1])

	require.Len(t, report.Explanations, 1)
	assert.Equal(t, "The email address is not valid; ask the customer to re-enter it.",
		report.Explanations[0].Explanation)
}

func TestExplainViolationsGeneratorFailureFallsBack(t *testing.T) {
	gen := llm.NewMockGenerator()
	gen.SetError(core.NewError(core.KindInternal, "provider down"))
	e := New(func(o *Options) { o.Generator = gen })

	report := e.ExplainViolations(context.Background(), "onboarding", sampleViolations()[:1])

	require.Len(t, report.Explanations, 1)
	assert.Contains(t, report.Explanations[0].Explanation, "expected format")
}

func TestRemediateBucketsBySeverity(t *testing.T) {
	plan := New().Remediate(sampleViolations())

	require.Len(t, plan.ImmediateActions, 1)
	assert.Contains(t, plan.ImmediateActions[0], "email")
	require.Len(t, plan.ShortTermActions, 1)
	assert.Contains(t, plan.ShortTermActions[0], "nickname")
	assert.NotEmpty(t, plan.PreventiveMeasures)
}

func TestRemediateNoViolations(t *testing.T) {
	plan := New().Remediate(nil)

	assert.Empty(t, plan.ImmediateActions)
	assert.Empty(t, plan.PreventiveMeasures)
}

func TestExplainRisk(t *testing.T) {
	text := New().ExplainRisk(validation.RiskResult{
		Level: validation.RiskMedium,
		Score: 0.5,
		Factors: []validation.RiskFactor{
			{Name: "high_value_transaction", Weight: 0.3},
			{Name: "cross_border_beneficiary", Weight: 0.2},
		},
		Recommendation: "Enhanced monitoring recommended",
	})

	assert.Contains(t, text, "high_value_transaction")
	assert.Contains(t, text, "Enhanced monitoring recommended")
}

func TestExplainRiskNoFactors(t *testing.T) {
	text := New().ExplainRisk(validation.RiskResult{
		Level:          validation.RiskLow,
		Score:          0,
		Recommendation: "Standard processing approved",
	})

	assert.Contains(t, text, "no contributing risk factors")
}
