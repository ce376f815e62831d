package workflow

import (
	"fmt"

	"github.com/govmesh/govmesh/agent"
	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/validation"
)

// Built-in workflow names.
const (
	WorkflowValidation = "validation"
	WorkflowKYC        = "kyc"
	WorkflowRisk       = "risk"
	WorkflowDrift      = "drift"
)

// RegisterBuiltins registers the standard workflows. Call once after
// construction; re-registration reports a write conflict like any other
// duplicate name.
func (o *Orchestrator) RegisterBuiltins() error {
	for _, def := range []Definition{
		validationWorkflow(),
		kycWorkflow(),
		riskWorkflow(),
		driftWorkflow(),
	} {
		if err := o.RegisterWorkflow(def); err != nil {
			return err
		}
	}
	return nil
}

// validationWorkflow evaluates a record, always pulls contextual snippets
// from the knowledge base, and, when violations are found, fans out to
// explanation and remediation in parallel.
func validationWorkflow() Definition {
	hasViolations := func(prior map[StepID]core.Response) bool {
		res, ok := evalResult(prior, "evaluate")
		return ok && len(res.Violations) > 0
	}
	violationsOf := func(prior map[StepID]core.Response) []validation.Violation {
		res, _ := evalResult(prior, "evaluate")
		return res.Violations
	}

	return Definition{
		Name: WorkflowValidation,
		Steps: []Step{
			{
				ID:         "evaluate",
				Capability: agent.CapabilityValidation,
				Action:     agent.ActionEvaluate,
				Payload: func(req Request, _ map[StepID]core.Response) (core.Payload, error) {
					return agent.EvaluatePayload{
						PolicyID: req.PolicyID,
						RuleSet:  req.RuleSet,
						Record:   req.Record,
					}, nil
				},
			},
			{
				ID:         "context",
				Capability: agent.CapabilityRAG,
				Action:     agent.ActionSearchKnowledge,
				DependsOn:  []StepID{"evaluate"},
				Payload: func(req Request, prior map[StepID]core.Response) (core.Payload, error) {
					query := req.Query
					if query == "" {
						query = "validation requirements " + req.PolicyID
						if vs := violationsOf(prior); len(vs) > 0 {
							query = fmt.Sprintf("%s %s %s", query, vs[0].Field, vs[0].Kind)
						}
					}
					return agent.SearchPayload{Query: query}, nil
				},
			},
			{
				ID:         "explain",
				Capability: agent.CapabilityExplanation,
				Action:     agent.ActionExplainViolations,
				DependsOn:  []StepID{"evaluate"},
				Predicate:  hasViolations,
				Payload: func(req Request, prior map[StepID]core.Response) (core.Payload, error) {
					return agent.ExplainPayload{
						PolicyName: req.PolicyID,
						Violations: violationsOf(prior),
					}, nil
				},
			},
			{
				ID:         "remediate",
				Capability: agent.CapabilityExplanation,
				Action:     agent.ActionGenerateRemediation,
				DependsOn:  []StepID{"evaluate"},
				Predicate:  hasViolations,
				Payload: func(_ Request, prior map[StepID]core.Response) (core.Payload, error) {
					return agent.RemediationPayload{Violations: violationsOf(prior)}, nil
				},
			},
		},
	}
}

// kycWorkflow checks customer completeness and pulls supporting guidance
// from the knowledge base when the customer is not cleanly approved.
func kycWorkflow() Definition {
	return Definition{
		Name: WorkflowKYC,
		Steps: []Step{
			{
				ID:         "kyc",
				Capability: agent.CapabilityValidation,
				Action:     agent.ActionValidateKYC,
				Payload: func(req Request, _ map[StepID]core.Response) (core.Payload, error) {
					if req.Customer == nil {
						return nil, core.NewError(core.KindInvalidParameters, "kyc workflow needs a customer")
					}
					return agent.KYCPayload{Customer: *req.Customer}, nil
				},
			},
			{
				ID:         "guidance",
				Capability: agent.CapabilityRAG,
				Action:     agent.ActionSearchKnowledge,
				DependsOn:  []StepID{"kyc"},
				Predicate: func(prior map[StepID]core.Response) bool {
					res, ok := kycResult(prior, "kyc")
					return ok && res.Status != validation.KYCApproved
				},
				Payload: func(_ Request, prior map[StepID]core.Response) (core.Payload, error) {
					res, _ := kycResult(prior, "kyc")
					query := "kyc requirements"
					if len(res.Issues) > 0 {
						query = fmt.Sprintf("kyc requirements %s", res.Issues[0].Kind)
					}
					return agent.SearchPayload{Query: query, Limit: 3}, nil
				},
			},
		},
	}
}

// riskWorkflow assesses a transaction and routes high-risk outcomes to an
// explanatory manual-review step.
func riskWorkflow() Definition {
	return Definition{
		Name: WorkflowRisk,
		Steps: []Step{
			{
				ID:         "assess",
				Capability: agent.CapabilityValidation,
				Action:     agent.ActionAssessRisk,
				Payload: func(req Request, _ map[StepID]core.Response) (core.Payload, error) {
					if req.Transaction == nil {
						return nil, core.NewError(core.KindInvalidParameters, "risk workflow needs a transaction")
					}
					return agent.RiskPayload{Transaction: *req.Transaction, Context: req.RiskContext}, nil
				},
			},
			{
				ID:         "review",
				Capability: agent.CapabilityExplanation,
				Action:     agent.ActionExplainRisk,
				DependsOn:  []StepID{"assess"},
				Predicate: func(prior map[StepID]core.Response) bool {
					res, ok := riskResult(prior, "assess")
					return ok && res.Level == validation.RiskHigh
				},
				Payload: func(_ Request, prior map[StepID]core.Response) (core.Payload, error) {
					res, _ := riskResult(prior, "assess")
					return agent.RiskExplainPayload{Result: res}, nil
				},
			},
		},
	}
}

// driftWorkflow detects schema drift and plans the migration. Breaking
// drift halts automatic planning: the migration step fails with
// KindSchemaIncompatible unless the request explicitly approves it.
func driftWorkflow() Definition {
	return Definition{
		Name: WorkflowDrift,
		Steps: []Step{
			{
				ID:         "drift",
				Capability: agent.CapabilitySchema,
				Action:     agent.ActionDetectDrift,
				Payload: func(req Request, _ map[StepID]core.Response) (core.Payload, error) {
					if req.OldSchema == nil || req.NewSchema == nil {
						return nil, core.NewError(core.KindInvalidParameters, "drift workflow needs two schema versions")
					}
					return agent.DriftPayload{Old: req.OldSchema, New: req.NewSchema}, nil
				},
			},
			{
				ID:         "migration",
				Capability: agent.CapabilitySchema,
				Action:     agent.ActionGenerateMigration,
				DependsOn:  []StepID{"drift"},
				Predicate: func(prior map[StepID]core.Response) bool {
					res, ok := driftResult(prior, "drift")
					return ok && res.HasDrift
				},
				Payload: func(req Request, prior map[StepID]core.Response) (core.Payload, error) {
					res, _ := driftResult(prior, "drift")
					if res.Breaking && !req.ApproveBreaking {
						return nil, core.NewError(core.KindSchemaIncompatible,
							"breaking schema drift requires explicit approval before migration planning")
					}
					return agent.MigrationPayload{Drift: res}, nil
				},
			},
		},
	}
}
