// Package validation implements the pure record-evaluation engine: rule set
// evaluation with deterministic scoring, KYC completeness checks and
// transaction risk assessment. Nothing here performs I/O or mutates its
// inputs; repeated calls with the same inputs return identical results.
package validation
