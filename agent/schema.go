package agent

import (
	"context"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/schema"
)

// NewSchemaAgent builds the agent owning the schema registry, drift
// detection and migration planning.
func NewSchemaAgent(id string, sender Sender, registry *schema.Registry, optFns ...func(o *Options)) *Runtime {
	r := NewRuntime(id, CapabilitySchema, sender, optFns...)

	r.Handle(ActionRegisterSchema, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[RegisterSchemaPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		if err := registry.Register(p.Version); err != nil {
			return core.Response{}, err
		}
		return core.OK(map[string]string{
			"name":    p.Version.Name,
			"version": p.Version.Version,
		}), nil
	})

	r.Handle(ActionDetectDrift, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[DriftPayload](env)
		if err != nil {
			return core.Response{}, err
		}

		switch {
		case p.Old != nil && p.New != nil:
			return core.OK(schema.DetectDrift(*p.Old, *p.New)), nil
		case p.Name != "":
			res, err := registry.Drift(p.Name, p.OldVersion, p.NewVersion)
			if err != nil {
				return core.Response{}, err
			}
			return core.OK(res), nil
		default:
			return core.Response{}, core.NewError(core.KindInvalidParameters,
				"detect_drift needs two schema versions, inline or by registry reference")
		}
	})

	r.Handle(ActionGenerateMigration, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[MigrationPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(schema.GenerateMigration(p.Drift)), nil
	})

	return r
}
