package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kycNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func kycEngine() *Engine {
	return NewEngine(DefaultConfig(), WithClock(func() time.Time { return kycNow }))
}

func completeCustomer() Customer {
	return Customer{
		ID: "cust-1",
		IdentityDocuments: []Document{
			{Type: "passport", Number: "P123456", ExpiresAt: kycNow.AddDate(5, 0, 0)},
		},
		AddressProof: "utility_bill",
		DateOfBirth:  kycNow.AddDate(-30, 0, 0),
	}
}

func TestValidateKYCApproved(t *testing.T) {
	res := kycEngine().ValidateKYC(completeCustomer())

	assert.Equal(t, KYCApproved, res.Status)
	assert.Equal(t, 1.0, res.Score)
	assert.Empty(t, res.Issues)
	assert.Equal(t, "Customer approved for onboarding", res.Recommendation)
}

func TestValidateKYCMissingAddress(t *testing.T) {
	c := completeCustomer()
	c.AddressProof = ""

	res := kycEngine().ValidateKYC(c)

	// 1.0 - 0.3 lands exactly on the approval threshold.
	assert.Equal(t, KYCApproved, res.Status)
	assert.InDelta(t, 0.7, res.Score, 1e-9)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "address_proof", res.Issues[0].Kind)
}

func TestValidateKYCMissingDocuments(t *testing.T) {
	c := completeCustomer()
	c.IdentityDocuments = nil

	res := kycEngine().ValidateKYC(c)

	assert.Equal(t, KYCReviewRequired, res.Status)
	assert.InDelta(t, 0.6, res.Score, 1e-9)
	assert.Equal(t, "Manual review required - resolve identified issues", res.Recommendation)
}

func TestValidateKYCRejected(t *testing.T) {
	res := kycEngine().ValidateKYC(Customer{ID: "cust-empty"})

	assert.Equal(t, KYCRejected, res.Status)
	assert.InDelta(t, 0.0, res.Score, 1e-9)
	assert.Len(t, res.Issues, 3)
	assert.Equal(t, "Customer rejected - critical issues found", res.Recommendation)
}

func TestValidateKYCExpiredDocument(t *testing.T) {
	c := completeCustomer()
	// Expired well past the grace window.
	c.IdentityDocuments = []Document{
		{Type: "passport", Number: "P0", ExpiresAt: kycNow.AddDate(-1, 0, 0)},
	}

	res := kycEngine().ValidateKYC(c)

	assert.Equal(t, KYCReviewRequired, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "identity_documents", res.Issues[0].Kind)
}

func TestValidateKYCDocumentInGraceWindow(t *testing.T) {
	c := completeCustomer()
	// Expired ten days ago; still inside the thirty-day grace window.
	c.IdentityDocuments = []Document{
		{Type: "passport", Number: "P1", ExpiresAt: kycNow.AddDate(0, 0, -10)},
	}

	res := kycEngine().ValidateKYC(c)

	assert.Equal(t, KYCApproved, res.Status)
	assert.Empty(t, res.Issues)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, SeverityLow, res.Warnings[0].Severity)
}

func TestValidateKYCExpiringSoonWarns(t *testing.T) {
	c := completeCustomer()
	c.IdentityDocuments = []Document{
		{Type: "drivers_license", Number: "D7", ExpiresAt: kycNow.AddDate(0, 0, 14)},
	}

	res := kycEngine().ValidateKYC(c)

	assert.Equal(t, KYCApproved, res.Status)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "expires soon")
}

func TestValidateKYCUnderage(t *testing.T) {
	c := completeCustomer()
	c.DateOfBirth = kycNow.AddDate(-17, 0, 0)

	res := kycEngine().ValidateKYC(c)

	assert.Equal(t, KYCReviewRequired, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "age_verification", res.Issues[0].Kind)
}

func TestValidateKYCBirthdayBoundary(t *testing.T) {
	e := kycEngine()

	// Turns 18 exactly today.
	c := completeCustomer()
	c.DateOfBirth = kycNow.AddDate(-18, 0, 0)
	assert.Equal(t, KYCApproved, e.ValidateKYC(c).Status)

	// Turns 18 tomorrow.
	c.DateOfBirth = kycNow.AddDate(-18, 0, 1)
	assert.Equal(t, KYCReviewRequired, e.ValidateKYC(c).Status)
}

func TestValidateKYCMissingDateOfBirth(t *testing.T) {
	c := completeCustomer()
	c.DateOfBirth = time.Time{}

	res := kycEngine().ValidateKYC(c)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, "age_verification", res.Issues[0].Kind)
	assert.Contains(t, res.Issues[0].Message, "missing or invalid")
}
