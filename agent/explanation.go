package agent

import (
	"context"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/explain"
)

// NewExplanationAgent builds the agent that narrates outcomes for business
// readers.
func NewExplanationAgent(id string, sender Sender, explainer *explain.Explainer, optFns ...func(o *Options)) *Runtime {
	r := NewRuntime(id, CapabilityExplanation, sender, optFns...)

	r.Handle(ActionExplainViolations, func(ctx context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[ExplainPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(explainer.ExplainViolations(ctx, p.PolicyName, p.Violations)), nil
	})

	r.Handle(ActionGenerateRemediation, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[RemediationPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(explainer.Remediate(p.Violations)), nil
	})

	r.Handle(ActionExplainRisk, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[RiskExplainPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(explainer.ExplainRisk(p.Result)), nil
	})

	return r
}
