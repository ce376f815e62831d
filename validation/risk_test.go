package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func riskEngine() *Engine {
	cfg := DefaultConfig()
	cfg.Risk.HighRiskCountries = []string{"XX", "YY"}
	return NewEngine(cfg)
}

func factorNames(factors []RiskFactor) []string {
	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.Name
	}
	return names
}

func TestAssessRiskNoFactors(t *testing.T) {
	res := riskEngine().AssessRisk(
		Transaction{Amount: 100, Currency: "USD", OriginCountry: "US", BeneficiaryCountry: "US"},
		RiskContext{AccountAgeDays: 400},
	)

	assert.Equal(t, RiskLow, res.Level)
	assert.Equal(t, 0.0, res.Score)
	assert.Empty(t, res.Factors)
	assert.Equal(t, "Standard processing approved", res.Recommendation)
}

func TestAssessRiskAmountBands(t *testing.T) {
	e := riskEngine()
	ctx := RiskContext{AccountAgeDays: 400}

	res := e.AssessRisk(Transaction{Amount: 5000, OriginCountry: "US", BeneficiaryCountry: "US"}, ctx)
	assert.Empty(t, res.Factors, "threshold amounts are exclusive")

	res = e.AssessRisk(Transaction{Amount: 5001, OriginCountry: "US", BeneficiaryCountry: "US"}, ctx)
	assert.Equal(t, []string{"medium_value_transaction"}, factorNames(res.Factors))
	assert.InDelta(t, 0.1, res.Score, 1e-9)

	res = e.AssessRisk(Transaction{Amount: 10001, OriginCountry: "US", BeneficiaryCountry: "US"}, ctx)
	assert.Equal(t, []string{"high_value_transaction"}, factorNames(res.Factors))
	assert.InDelta(t, 0.3, res.Score, 1e-9)
}

func TestAssessRiskLevelBoundaries(t *testing.T) {
	e := riskEngine()

	// high_value (0.3) + cross_border (0.2) = 0.5, exactly medium.
	res := e.AssessRisk(
		Transaction{Amount: 20000, OriginCountry: "US", BeneficiaryCountry: "DE"},
		RiskContext{AccountAgeDays: 400},
	)
	assert.InDelta(t, 0.5, res.Score, 1e-9)
	assert.Equal(t, RiskMedium, res.Level)
	assert.Equal(t, "Enhanced monitoring recommended", res.Recommendation)

	// high_value + cross_border + low_account_age = 0.7, still medium.
	res = e.AssessRisk(
		Transaction{Amount: 20000, OriginCountry: "US", BeneficiaryCountry: "DE"},
		RiskContext{AccountAgeDays: 10},
	)
	assert.InDelta(t, 0.7, res.Score, 1e-9)
	assert.Equal(t, RiskMedium, res.Level)

	// Adding previous_violations crosses into high.
	res = e.AssessRisk(
		Transaction{Amount: 20000, OriginCountry: "US", BeneficiaryCountry: "DE"},
		RiskContext{AccountAgeDays: 10, PriorViolations: 2},
	)
	assert.InDelta(t, 0.9, res.Score, 1e-9)
	assert.Equal(t, RiskHigh, res.Level)
	assert.Equal(t, "Manual review and approval required", res.Recommendation)
}

func TestAssessRiskHighRiskGeography(t *testing.T) {
	res := riskEngine().AssessRisk(
		Transaction{Amount: 100, OriginCountry: "US", BeneficiaryCountry: "XX"},
		RiskContext{AccountAgeDays: 400},
	)

	names := factorNames(res.Factors)
	assert.Contains(t, names, "high_risk_geography")
	assert.Contains(t, names, "cross_border_beneficiary")
	assert.InDelta(t, 0.6, res.Score, 1e-9)
	assert.Equal(t, RiskMedium, res.Level)
}

func TestAssessRiskScoreClamped(t *testing.T) {
	res := riskEngine().AssessRisk(
		Transaction{Amount: 50000, OriginCountry: "XX", BeneficiaryCountry: "YY"},
		RiskContext{AccountAgeDays: 1, PriorViolations: 5},
	)

	// 0.3 + 0.2 + 0.4 + 0.2 + 0.2 = 1.3, clamped.
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, RiskHigh, res.Level)
	require.Len(t, res.Factors, 5)
}

func TestAssessRiskFactorOrderDeterministic(t *testing.T) {
	e := riskEngine()
	tx := Transaction{Amount: 20000, OriginCountry: "XX", BeneficiaryCountry: "US"}
	ctx := RiskContext{AccountAgeDays: 30, PriorViolations: 1}

	first := e.AssessRisk(tx, ctx)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.AssessRisk(tx, ctx))
	}
	assert.Equal(t, []string{
		"high_value_transaction",
		"cross_border_beneficiary",
		"high_risk_geography",
		"low_account_age",
		"previous_violations",
	}, factorNames(first.Factors))
}
