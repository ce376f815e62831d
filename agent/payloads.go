package agent

import (
	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/schema"
	"github.com/govmesh/govmesh/validation"
)

// Capability names served by the concrete agents.
const (
	CapabilityPolicy      = "policy"
	CapabilityValidation  = "validation"
	CapabilitySchema      = "schema"
	CapabilityRAG         = "rag"
	CapabilityExplanation = "explanation"
)

// Action names. Every action has exactly one payload type; the router
// rejects envelopes whose payload does not match the declared action.
const (
	ActionParsePolicy         = "parse_policy"
	ActionGetPolicy           = "get_policy"
	ActionListPolicies        = "list_policies"
	ActionValidatePolicy      = "validate_policy"
	ActionEvaluate            = "evaluate"
	ActionValidateKYC         = "validate_kyc"
	ActionAssessRisk          = "assess_risk"
	ActionRegisterSchema      = "register_schema"
	ActionDetectDrift         = "detect_drift"
	ActionGenerateMigration   = "generate_migration"
	ActionSearchKnowledge     = "search_knowledge"
	ActionSemanticSearch      = "semantic_search"
	ActionStoreKnowledge      = "store_knowledge"
	ActionExplainViolations   = "explain_violations"
	ActionGenerateRemediation = "generate_remediation"
	ActionExplainRisk         = "explain_risk"
)

// ParsePolicyPayload asks the policy agent to turn text into a stored rule
// set.
type ParsePolicyPayload struct {
	PolicyID string `json:"policy_id"`
	Text     string `json:"text"`
}

func (ParsePolicyPayload) Action() string { return ActionParsePolicy }

// GetPolicyPayload looks up a stored rule set.
type GetPolicyPayload struct {
	PolicyID string `json:"policy_id"`
}

func (GetPolicyPayload) Action() string { return ActionGetPolicy }

// ListPoliciesPayload lists stored policy ids.
type ListPoliciesPayload struct{}

func (ListPoliciesPayload) Action() string { return ActionListPolicies }

// ValidatePolicyPayload checks a rule set for structural problems without
// storing it.
type ValidatePolicyPayload struct {
	RuleSet core.RuleSet `json:"rule_set"`
}

func (ValidatePolicyPayload) Action() string { return ActionValidatePolicy }

// EvaluatePayload validates a record, either against an inline rule set or
// against a stored policy referenced by id.
type EvaluatePayload struct {
	PolicyID string        `json:"policy_id,omitempty"`
	RuleSet  *core.RuleSet `json:"rule_set,omitempty"`
	Record   core.Record   `json:"record"`
}

func (EvaluatePayload) Action() string { return ActionEvaluate }

// KYCPayload runs the KYC completeness check.
type KYCPayload struct {
	Customer validation.Customer `json:"customer"`
}

func (KYCPayload) Action() string { return ActionValidateKYC }

// RiskPayload runs the transaction risk assessment.
type RiskPayload struct {
	Transaction validation.Transaction `json:"transaction"`
	Context     validation.RiskContext `json:"context"`
}

func (RiskPayload) Action() string { return ActionAssessRisk }

// RegisterSchemaPayload registers a schema version.
type RegisterSchemaPayload struct {
	Version schema.Version `json:"version"`
}

func (RegisterSchemaPayload) Action() string { return ActionRegisterSchema }

// DriftPayload diffs two schema versions, inline or by registry reference.
type DriftPayload struct {
	Old *schema.Version `json:"old,omitempty"`
	New *schema.Version `json:"new,omitempty"`

	// Name plus versions select registered schemas when Old/New are nil.
	Name       string `json:"name,omitempty"`
	OldVersion string `json:"old_version,omitempty"`
	NewVersion string `json:"new_version,omitempty"`
}

func (DriftPayload) Action() string { return ActionDetectDrift }

// MigrationPayload plans a migration for detected drift.
type MigrationPayload struct {
	Drift schema.DriftResult `json:"drift"`
}

func (MigrationPayload) Action() string { return ActionGenerateMigration }

// SearchPayload queries the knowledge base.
type SearchPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func (SearchPayload) Action() string { return ActionSearchKnowledge }

// SemanticSearchPayload queries the knowledge base and drops hits scoring
// below the threshold.
type SemanticSearchPayload struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

func (SemanticSearchPayload) Action() string { return ActionSemanticSearch }

// StoreKnowledgePayload indexes a document in the knowledge base.
type StoreKnowledgePayload struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

func (StoreKnowledgePayload) Action() string { return ActionStoreKnowledge }

// ExplainPayload narrates validation violations.
type ExplainPayload struct {
	PolicyName string                 `json:"policy_name,omitempty"`
	Violations []validation.Violation `json:"violations"`
}

func (ExplainPayload) Action() string { return ActionExplainViolations }

// RemediationPayload requests a remediation plan for violations.
type RemediationPayload struct {
	Violations []validation.Violation `json:"violations"`
}

func (RemediationPayload) Action() string { return ActionGenerateRemediation }

// RiskExplainPayload narrates a risk assessment.
type RiskExplainPayload struct {
	Result validation.RiskResult `json:"result"`
}

func (RiskExplainPayload) Action() string { return ActionExplainRisk }
