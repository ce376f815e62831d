package validation

import "strings"

// AssessRisk scores a transaction against its context. Factors are additive
// and the final score is clamped to [0,1]; the risk level follows the
// configured medium and high thresholds.
func (e *Engine) AssessRisk(tx Transaction, rctx RiskContext) RiskResult {
	cfg := e.cfg.Risk

	factors := make([]RiskFactor, 0)
	add := func(name string, weight float64) {
		factors = append(factors, RiskFactor{Name: name, Weight: weight})
	}

	switch {
	case tx.Amount > cfg.HighAmountThreshold:
		add("high_value_transaction", cfg.HighAmountWeight)
	case tx.Amount > cfg.MediumAmountThreshold:
		add("medium_value_transaction", cfg.MediumAmountWeight)
	}

	if tx.OriginCountry != "" && tx.BeneficiaryCountry != "" &&
		!strings.EqualFold(tx.OriginCountry, tx.BeneficiaryCountry) {
		add("cross_border_beneficiary", cfg.CrossBorderWeight)
	}

	if e.highRiskCountry(tx.OriginCountry) || e.highRiskCountry(tx.BeneficiaryCountry) {
		add("high_risk_geography", cfg.HighRiskCountryWeight)
	}

	if rctx.AccountAgeDays >= 0 && rctx.AccountAgeDays < cfg.MinAccountAgeDays {
		add("low_account_age", cfg.LowAccountAgeWeight)
	}

	if rctx.PriorViolations > 0 {
		add("previous_violations", cfg.PriorViolationWeight)
	}

	var score float64
	for _, f := range factors {
		score += f.Weight
	}
	score = clamp(score)

	var level RiskLevel
	var recommendation string
	switch {
	case score >= cfg.HighThreshold:
		level = RiskHigh
		recommendation = "Manual review and approval required"
	case score >= cfg.MediumThreshold:
		level = RiskMedium
		recommendation = "Enhanced monitoring recommended"
	default:
		level = RiskLow
		recommendation = "Standard processing approved"
	}

	return RiskResult{
		Level:          level,
		Score:          score,
		Factors:        factors,
		Recommendation: recommendation,
	}
}

func (e *Engine) highRiskCountry(country string) bool {
	for _, c := range e.cfg.Risk.HighRiskCountries {
		if strings.EqualFold(c, country) {
			return true
		}
	}
	return false
}
