package validation

import "time"

// Weights maps violation severity to its score penalty. The defaults come
// from the documented scoring model but remain configurable constants, not
// fixed law.
type Weights struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
	Low    float64 `yaml:"low" json:"low"`
}

// For returns the weight for a severity.
func (w Weights) For(s Severity) float64 {
	switch s {
	case SeverityHigh:
		return w.High
	case SeverityMedium:
		return w.Medium
	case SeverityLow:
		return w.Low
	default:
		return w.Medium
	}
}

// KYCConfig tunes the completeness scoring.
type KYCConfig struct {
	DocumentPenalty  float64       `yaml:"document_penalty" json:"document_penalty"`
	AddressPenalty   float64       `yaml:"address_penalty" json:"address_penalty"`
	AgePenalty       float64       `yaml:"age_penalty" json:"age_penalty"`
	ApproveThreshold float64       `yaml:"approve_threshold" json:"approve_threshold"`
	RejectThreshold  float64       `yaml:"reject_threshold" json:"reject_threshold"`
	MinimumAge       int           `yaml:"minimum_age" json:"minimum_age"`
	ExpiryGrace      time.Duration `yaml:"expiry_grace" json:"expiry_grace"`
}

// RiskConfig tunes the risk factor weights and level thresholds.
type RiskConfig struct {
	HighAmountThreshold   float64  `yaml:"high_amount_threshold" json:"high_amount_threshold"`
	MediumAmountThreshold float64  `yaml:"medium_amount_threshold" json:"medium_amount_threshold"`
	HighAmountWeight      float64  `yaml:"high_amount_weight" json:"high_amount_weight"`
	MediumAmountWeight    float64  `yaml:"medium_amount_weight" json:"medium_amount_weight"`
	CrossBorderWeight     float64  `yaml:"cross_border_weight" json:"cross_border_weight"`
	HighRiskCountryWeight float64  `yaml:"high_risk_country_weight" json:"high_risk_country_weight"`
	LowAccountAgeWeight   float64  `yaml:"low_account_age_weight" json:"low_account_age_weight"`
	PriorViolationWeight  float64  `yaml:"prior_violation_weight" json:"prior_violation_weight"`
	MinAccountAgeDays     int      `yaml:"min_account_age_days" json:"min_account_age_days"`
	HighRiskCountries     []string `yaml:"high_risk_countries" json:"high_risk_countries"`
	MediumThreshold       float64  `yaml:"medium_threshold" json:"medium_threshold"`
	HighThreshold         float64  `yaml:"high_threshold" json:"high_threshold"`
}

// Config aggregates all tunables of the engine.
type Config struct {
	Weights Weights    `yaml:"weights" json:"weights"`
	KYC     KYCConfig  `yaml:"kyc" json:"kyc"`
	Risk    RiskConfig `yaml:"risk" json:"risk"`
}

// DefaultConfig returns the documented default weights and thresholds.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{High: 1.0, Medium: 0.5, Low: 0.25},
		KYC: KYCConfig{
			DocumentPenalty:  0.4,
			AddressPenalty:   0.3,
			AgePenalty:       0.3,
			ApproveThreshold: 0.7,
			RejectThreshold:  0.3,
			MinimumAge:       18,
			ExpiryGrace:      30 * 24 * time.Hour,
		},
		Risk: RiskConfig{
			HighAmountThreshold:   10000,
			MediumAmountThreshold: 5000,
			HighAmountWeight:      0.3,
			MediumAmountWeight:    0.1,
			CrossBorderWeight:     0.2,
			HighRiskCountryWeight: 0.4,
			LowAccountAgeWeight:   0.2,
			PriorViolationWeight:  0.2,
			MinAccountAgeDays:     90,
			MediumThreshold:       0.5,
			HighThreshold:         0.8,
		},
	}
}
