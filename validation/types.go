package validation

import "time"

// Severity ranks how heavily a violation weighs against the score.
type Severity string

const (
	// SeverityLow marks advisory findings; they surface as warnings only.
	SeverityLow Severity = "low"
	// SeverityMedium marks constraint failures on optional fields.
	SeverityMedium Severity = "medium"
	// SeverityHigh marks missing required fields, type mismatches and
	// constraint failures on required fields.
	SeverityHigh Severity = "high"
)

// ViolationKind classifies what a rule check found wrong.
type ViolationKind string

const (
	// KindMissingRequired means a required field was absent.
	KindMissingRequired ViolationKind = "missing_required"
	// KindInvalidType means the value's type did not match the declaration.
	KindInvalidType ViolationKind = "invalid_type"
	// KindConstraintViolation means a range or length constraint failed.
	KindConstraintViolation ViolationKind = "constraint_violation"
	// KindPatternMismatch means a format pattern (regex, email, phone) failed.
	KindPatternMismatch ViolationKind = "pattern_mismatch"
)

// Violation describes one failed check against one field.
type Violation struct {
	Field    string        `json:"field"`
	Kind     ViolationKind `json:"kind"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
}

// Result is the outcome of evaluating a rule set against a record.
// IsValid holds exactly when Violations is empty; warnings never affect it.
type Result struct {
	IsValid    bool        `json:"is_valid"`
	Score      float64     `json:"score"`
	Violations []Violation `json:"violations"`
	Warnings   []Violation `json:"warnings"`
}

// KYCStatus is the decision bucket produced by the KYC check.
type KYCStatus string

const (
	// KYCApproved means the completeness score cleared the approval threshold.
	KYCApproved KYCStatus = "approved"
	// KYCReviewRequired means the score landed between the thresholds.
	KYCReviewRequired KYCStatus = "review_required"
	// KYCRejected means the score fell below the rejection threshold.
	KYCRejected KYCStatus = "rejected"
)

// KYCIssue records one failed or degraded KYC check.
type KYCIssue struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// KYCResult carries the completeness decision with its contributing issues.
type KYCResult struct {
	Status         KYCStatus  `json:"kyc_status"`
	Score          float64    `json:"kyc_score"`
	Issues         []KYCIssue `json:"issues"`
	Warnings       []KYCIssue `json:"warnings"`
	Recommendation string     `json:"recommendation"`
}

// Document is an identity document supplied for KYC.
type Document struct {
	Type      string    `json:"type"`
	Number    string    `json:"number,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Customer is the typed KYC input. Zero values mean "not supplied".
type Customer struct {
	ID                string     `json:"id,omitempty"`
	IdentityDocuments []Document `json:"identity_documents,omitempty"`
	AddressProof      string     `json:"address_proof,omitempty"`
	DateOfBirth       time.Time  `json:"date_of_birth,omitempty"`
}

// RiskLevel buckets the accumulated risk score.
type RiskLevel string

const (
	// RiskLow is a score below the medium threshold.
	RiskLow RiskLevel = "low"
	// RiskMedium is a score in the [medium, high) band.
	RiskMedium RiskLevel = "medium"
	// RiskHigh is a score at or above the high threshold.
	RiskHigh RiskLevel = "high"
)

// RiskFactor names one contributing factor and its weight, kept for
// explainability.
type RiskFactor struct {
	Name   string  `json:"factor"`
	Weight float64 `json:"weight"`
}

// RiskResult is the outcome of a risk assessment.
type RiskResult struct {
	Level          RiskLevel    `json:"risk_level"`
	Score          float64      `json:"risk_score"`
	Factors        []RiskFactor `json:"risk_factors"`
	Recommendation string       `json:"recommendation"`
}

// Transaction is the typed risk-assessment input.
type Transaction struct {
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency,omitempty"`
	OriginCountry      string  `json:"origin_country,omitempty"`
	BeneficiaryCountry string  `json:"beneficiary_country,omitempty"`
}

// RiskContext carries the caller-supplied history consulted during risk
// assessment.
type RiskContext struct {
	AccountAgeDays  int `json:"account_age_days,omitempty"`
	PriorViolations int `json:"prior_violations,omitempty"`
}
