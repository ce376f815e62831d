package agent

import (
	"context"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/policy"
	"github.com/govmesh/govmesh/validation"
)

// NewValidationAgent builds the agent wrapping the validation engine. The
// policy store resolves rule sets referenced by id; inline rule sets bypass
// it entirely.
func NewValidationAgent(id string, sender Sender, engine *validation.Engine, store policy.Store, optFns ...func(o *Options)) *Runtime {
	r := NewRuntime(id, CapabilityValidation, sender, optFns...)

	r.Handle(ActionEvaluate, func(ctx context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[EvaluatePayload](env)
		if err != nil {
			return core.Response{}, err
		}

		var rs core.RuleSet
		switch {
		case p.RuleSet != nil:
			rs = *p.RuleSet
		case p.PolicyID != "":
			if store == nil {
				return core.Response{}, core.NewError(core.KindPolicyNotFound, "no policy store configured")
			}
			rs, err = store.Load(ctx, p.PolicyID)
			if err != nil {
				return core.Response{}, err
			}
		default:
			return core.Response{}, core.NewError(core.KindInvalidParameters, "evaluate needs a rule set or policy id")
		}

		if err := rs.Validate(); err != nil {
			return core.Response{}, err
		}
		return core.OK(engine.Evaluate(rs, p.Record)), nil
	})

	r.Handle(ActionValidateKYC, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[KYCPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(engine.ValidateKYC(p.Customer)), nil
	})

	r.Handle(ActionAssessRisk, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[RiskPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(engine.AssessRisk(p.Transaction, p.Context)), nil
	})

	return r
}
