package workflow

import (
	"context"

	"github.com/govmesh/govmesh/agent"
	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/schema"
	"github.com/govmesh/govmesh/validation"
)

// The methods in this file are the outward operation surface: each one is a
// single-step dispatch through the router with the same timeout and retry
// policy as a workflow step.

// call dispatches one payload to a capability and awaits the response.
func (o *Orchestrator) call(ctx context.Context, capability string, p core.Payload) (core.Response, error) {
	outcomes := make(chan stepOutcome, 1)
	s := Step{
		ID:         StepID(p.Action()),
		Capability: capability,
		Action:     p.Action(),
		Payload: func(Request, map[StepID]core.Response) (core.Payload, error) {
			return p, nil
		},
	}
	go o.runStep(ctx, s, Request{}, nil, outcomes)

	out := <-outcomes
	if out.err != nil {
		return core.Response{}, out.err
	}
	if !out.resp.Success {
		return out.resp, out.resp.Err()
	}
	return out.resp, nil
}

// RegisterPolicy parses policy text via the policy agent and returns the
// stored policy id.
func (o *Orchestrator) RegisterPolicy(ctx context.Context, policyID, text string) (string, error) {
	resp, err := o.call(ctx, agent.CapabilityPolicy, agent.ParsePolicyPayload{PolicyID: policyID, Text: text})
	if err != nil {
		return "", err
	}
	parsed, ok := resp.Data.(agent.ParsedPolicy)
	if !ok {
		return "", core.NewError(core.KindInternal, "unexpected parse result type %T", resp.Data)
	}
	return parsed.PolicyID, nil
}

// Validate evaluates a record against a stored policy.
func (o *Orchestrator) Validate(ctx context.Context, policyID string, record core.Record) (validation.Result, error) {
	resp, err := o.call(ctx, agent.CapabilityValidation, agent.EvaluatePayload{PolicyID: policyID, Record: record})
	if err != nil {
		return validation.Result{}, err
	}
	res, ok := resp.Data.(validation.Result)
	if !ok {
		return validation.Result{}, core.NewError(core.KindInternal, "unexpected validation result type %T", resp.Data)
	}
	return res, nil
}

// RunKYC runs the KYC completeness check.
func (o *Orchestrator) RunKYC(ctx context.Context, customer validation.Customer) (validation.KYCResult, error) {
	resp, err := o.call(ctx, agent.CapabilityValidation, agent.KYCPayload{Customer: customer})
	if err != nil {
		return validation.KYCResult{}, err
	}
	res, ok := resp.Data.(validation.KYCResult)
	if !ok {
		return validation.KYCResult{}, core.NewError(core.KindInternal, "unexpected kyc result type %T", resp.Data)
	}
	return res, nil
}

// AssessRisk scores a transaction.
func (o *Orchestrator) AssessRisk(ctx context.Context, tx validation.Transaction, rctx validation.RiskContext) (validation.RiskResult, error) {
	resp, err := o.call(ctx, agent.CapabilityValidation, agent.RiskPayload{Transaction: tx, Context: rctx})
	if err != nil {
		return validation.RiskResult{}, err
	}
	res, ok := resp.Data.(validation.RiskResult)
	if !ok {
		return validation.RiskResult{}, core.NewError(core.KindInternal, "unexpected risk result type %T", resp.Data)
	}
	return res, nil
}

// RegisterSchema registers a schema version with the schema agent.
func (o *Orchestrator) RegisterSchema(ctx context.Context, v schema.Version) error {
	_, err := o.call(ctx, agent.CapabilitySchema, agent.RegisterSchemaPayload{Version: v})
	return err
}

// DetectSchemaDrift diffs two schema versions.
func (o *Orchestrator) DetectSchemaDrift(ctx context.Context, old, next schema.Version) (schema.DriftResult, error) {
	resp, err := o.call(ctx, agent.CapabilitySchema, agent.DriftPayload{Old: &old, New: &next})
	if err != nil {
		return schema.DriftResult{}, err
	}
	res, ok := resp.Data.(schema.DriftResult)
	if !ok {
		return schema.DriftResult{}, core.NewError(core.KindInternal, "unexpected drift result type %T", resp.Data)
	}
	return res, nil
}

// ExecuteWorkflow runs a registered workflow by name.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, name string, req Request) Result {
	return o.Execute(ctx, name, req)
}
