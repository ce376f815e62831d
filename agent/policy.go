package agent

import (
	"context"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/policy"
)

// ParsedPolicy is the data returned for a successful parse_policy call.
type ParsedPolicy struct {
	PolicyID string       `json:"policy_id"`
	RuleSet  core.RuleSet `json:"rule_set"`
}

// PolicyCheck is the data returned by validate_policy.
type PolicyCheck struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// NewPolicyAgent builds the agent that parses and stores policies. The
// parser may be the deterministic stub or an llm-backed one; the agent does
// not care.
func NewPolicyAgent(id string, sender Sender, parser policy.Parser, store policy.Store, optFns ...func(o *Options)) *Runtime {
	r := NewRuntime(id, CapabilityPolicy, sender, optFns...)

	r.Handle(ActionParsePolicy, func(ctx context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[ParsePolicyPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		if p.Text == "" {
			return core.Response{}, core.NewError(core.KindInvalidParameters, "policy text is empty")
		}

		policyID := p.PolicyID
		if policyID == "" {
			policyID = core.NewID()
		}

		rs, err := parser.Parse(ctx, policyID, p.Text)
		if err != nil {
			return core.Response{}, err
		}
		if err := store.Save(ctx, rs); err != nil {
			return core.Response{}, err
		}
		return core.OK(ParsedPolicy{PolicyID: policyID, RuleSet: rs}), nil
	})

	r.Handle(ActionGetPolicy, func(ctx context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[GetPolicyPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		rs, err := store.Load(ctx, p.PolicyID)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(rs), nil
	})

	r.Handle(ActionValidatePolicy, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[ValidatePolicyPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		issues := policy.Check(p.RuleSet)
		return core.OK(PolicyCheck{Valid: len(issues) == 0, Issues: issues}), nil
	})

	r.Handle(ActionListPolicies, func(ctx context.Context, env core.Envelope) (core.Response, error) {
		if _, err := payloadAs[ListPoliciesPayload](env); err != nil {
			return core.Response{}, err
		}
		ids, err := store.List(ctx)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(ids), nil
	})

	return r
}
