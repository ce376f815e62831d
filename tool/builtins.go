package tool

import (
	"context"
	"encoding/json"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/schema"
	"github.com/govmesh/govmesh/validation"
	"github.com/govmesh/govmesh/workflow"
)

// RegisterBuiltins registers the governance operations of orch as callable
// tools, giving model function calling and scripting layers a uniform way to
// drive policy, validation, and schema workflows.
func RegisterBuiltins(r *Registry, orch *workflow.Orchestrator) {
	r.Register(NewFuncTool(
		"register_policy",
		"Parse a natural-language policy document into structured rules and store it",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"policy_id": map[string]any{"type": "string", "description": "Policy identifier; generated when omitted"},
				"text":      map[string]any{"type": "string", "description": "Natural-language policy text"},
			},
			"required": []string{"text"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			policyID, _ := args["policy_id"].(string)
			text, _ := args["text"].(string)

			id, err := orch.RegisterPolicy(ctx, policyID, text)
			if err != nil {
				return nil, err
			}

			return map[string]any{"policy_id": id}, nil
		},
	))

	r.Register(NewFuncTool(
		"validate_record",
		"Validate a business record against a stored policy",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"policy_id": map[string]any{"type": "string"},
				"record":    map[string]any{"type": "object"},
			},
			"required": []string{"policy_id", "record"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			policyID, _ := args["policy_id"].(string)

			record, err := decodeArg[core.Record](args, "record")
			if err != nil {
				return nil, err
			}

			return orch.Validate(ctx, policyID, record)
		},
	))

	r.Register(NewFuncTool(
		"run_kyc",
		"Run KYC verification checks for a customer",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"customer": map[string]any{"type": "object"},
			},
			"required": []string{"customer"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			customer, err := decodeArg[validation.Customer](args, "customer")
			if err != nil {
				return nil, err
			}

			return orch.RunKYC(ctx, customer)
		},
	))

	r.Register(NewFuncTool(
		"assess_risk",
		"Score a transaction for risk and recommend a processing path",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"transaction": map[string]any{"type": "object"},
				"context":     map[string]any{"type": "object"},
			},
			"required": []string{"transaction"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			tx, err := decodeArg[validation.Transaction](args, "transaction")
			if err != nil {
				return nil, err
			}

			rctx, err := decodeArg[validation.RiskContext](args, "context")
			if err != nil {
				return nil, err
			}

			return orch.AssessRisk(ctx, tx, rctx)
		},
	))

	r.Register(NewFuncTool(
		"register_schema",
		"Register a named, versioned schema definition",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"schema": map[string]any{"type": "object"},
			},
			"required": []string{"schema"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			v, err := decodeArg[schema.Version](args, "schema")
			if err != nil {
				return nil, err
			}

			if err := orch.RegisterSchema(ctx, v); err != nil {
				return nil, err
			}

			return map[string]any{"name": v.Name, "version": v.Version}, nil
		},
	))

	r.Register(NewFuncTool(
		"detect_schema_drift",
		"Compare two schema versions and report drift and compatibility",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"old": map[string]any{"type": "object"},
				"new": map[string]any{"type": "object"},
			},
			"required": []string{"old", "new"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			old, err := decodeArg[schema.Version](args, "old")
			if err != nil {
				return nil, err
			}

			next, err := decodeArg[schema.Version](args, "new")
			if err != nil {
				return nil, err
			}

			return orch.DetectSchemaDrift(ctx, old, next)
		},
	))

	r.Register(NewFuncTool(
		"run_workflow",
		"Execute a registered multi-step workflow; the returned data carries the workflow state and per-step outputs",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"workflow": map[string]any{"type": "string"},
				"request":  map[string]any{"type": "object"},
			},
			"required": []string{"workflow"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			name, _ := args["workflow"].(string)

			req, err := decodeArg[workflow.Request](args, "request")
			if err != nil {
				return nil, err
			}

			return orch.ExecuteWorkflow(ctx, name, req), nil
		},
	))
}

// decodeArg converts a loosely typed argument into a concrete type by
// round-tripping through JSON. A missing key yields the zero value.
func decodeArg[T any](args map[string]any, key string) (T, error) {
	var out T

	raw, ok := args[key]
	if !ok || raw == nil {
		return out, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return out, core.WrapError(core.KindInvalidParameters, err, "encode argument %q", key)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, core.WrapError(core.KindInvalidParameters, err, "decode argument %q", key)
	}

	return out, nil
}
