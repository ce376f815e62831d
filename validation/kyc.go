package validation

import (
	"fmt"
	"time"
)

// ValidateKYC checks customer completeness for onboarding. The score starts
// at 1.0 and loses a fixed penalty per failed check; the final status is
// derived from the configured approve and reject thresholds.
func (e *Engine) ValidateKYC(customer Customer) KYCResult {
	cfg := e.cfg.KYC
	now := e.now()

	score := 1.0
	issues := make([]KYCIssue, 0)
	warnings := make([]KYCIssue, 0)

	// Identity documents. A document counts as valid until the grace window
	// past its expiry has elapsed; documents already inside the window of an
	// upcoming expiry produce warnings.
	validDocs := 0
	for _, doc := range customer.IdentityDocuments {
		if doc.ExpiresAt.IsZero() || doc.ExpiresAt.After(now.Add(-cfg.ExpiryGrace)) {
			validDocs++
			if !doc.ExpiresAt.IsZero() && doc.ExpiresAt.Before(now.Add(cfg.ExpiryGrace)) {
				warnings = append(warnings, KYCIssue{
					Kind:     "identity_documents",
					Severity: SeverityLow,
					Message:  fmt.Sprintf("document %s expires soon (%s)", doc.Number, doc.ExpiresAt.Format("2006-01-02")),
				})
			}
		}
	}
	if validDocs == 0 {
		score -= cfg.DocumentPenalty
		issues = append(issues, KYCIssue{
			Kind:     "identity_documents",
			Severity: SeverityHigh,
			Message:  "no valid identity documents on file",
		})
	}

	if customer.AddressProof == "" {
		score -= cfg.AddressPenalty
		issues = append(issues, KYCIssue{
			Kind:     "address_proof",
			Severity: SeverityMedium,
			Message:  "address proof is missing",
		})
	}

	switch {
	case customer.DateOfBirth.IsZero():
		score -= cfg.AgePenalty
		issues = append(issues, KYCIssue{
			Kind:     "age_verification",
			Severity: SeverityHigh,
			Message:  "date of birth is missing or invalid",
		})
	case age(customer.DateOfBirth, now) < cfg.MinimumAge:
		score -= cfg.AgePenalty
		issues = append(issues, KYCIssue{
			Kind:     "age_verification",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("customer is below the minimum age of %d", cfg.MinimumAge),
		})
	}

	score = clamp(score)

	var status KYCStatus
	var recommendation string
	switch {
	case score >= cfg.ApproveThreshold:
		status = KYCApproved
		recommendation = "Customer approved for onboarding"
	case score < cfg.RejectThreshold:
		status = KYCRejected
		recommendation = "Customer rejected - critical issues found"
	default:
		status = KYCReviewRequired
		recommendation = "Manual review required - resolve identified issues"
	}

	return KYCResult{
		Status:         status,
		Score:          score,
		Issues:         issues,
		Warnings:       warnings,
		Recommendation: recommendation,
	}
}

// age returns full years elapsed between born and now.
func age(born, now time.Time) int {
	years := now.Year() - born.Year()
	anniversary := born.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
