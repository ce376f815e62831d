// Package govmesh provides a high-level façade over the governance mesh:
// a router, one agent per capability (policy, validation, schema, knowledge
// retrieval, explanation), a workflow orchestrator, and a tool registry.
// Most applications interact with this package by:
//  1. Creating a Mesh via New() (optionally overriding parsers, stores, and
//     the language model generator)
//  2. Starting it with Start()
//  3. Driving it through the orchestrator methods (RegisterPolicy, Validate,
//     ExecuteWorkflow, ...) or the uniform tool surface (CallTool)
//
// All defaults are in-memory and safe for local development and testing;
// production deployments typically supply a Redis-backed policy store, a real
// model generator, and a structured logger.
package govmesh

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/govmesh/govmesh/agent"
	"github.com/govmesh/govmesh/config"
	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/explain"
	"github.com/govmesh/govmesh/knowledge"
	"github.com/govmesh/govmesh/llm"
	"github.com/govmesh/govmesh/logging"
	"github.com/govmesh/govmesh/metric"
	"github.com/govmesh/govmesh/policy"
	"github.com/govmesh/govmesh/router"
	"github.com/govmesh/govmesh/schema"
	"github.com/govmesh/govmesh/tool"
	"github.com/govmesh/govmesh/validation"
	"github.com/govmesh/govmesh/workflow"
)

// Options configures the Mesh instance.
type Options struct {
	// Config carries runtime, logging, and validation tunables. Defaults to
	// config.Default().
	Config config.Config

	// Parser turns policy text into rule sets. Defaults to the heuristic
	// stub parser, or to an LLM-backed parser when Generator is set.
	Parser policy.Parser

	// PolicyStore persists parsed rule sets (defaults to in-memory).
	PolicyStore policy.Store

	// Knowledge serves compliance snippets to the retrieval agent
	// (defaults to an empty in-memory store).
	Knowledge knowledge.Searcher

	// Generator enriches violation explanations and, when no Parser is
	// given, powers policy parsing. Nil keeps the template-only paths.
	Generator llm.Generator

	// MetricsRegistry receives the mesh Prometheus collectors. Nil disables
	// metrics collection.
	MetricsRegistry prometheus.Registerer

	// Logger (defaults to a slog text logger at the configured level)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the router, agents, orchestrator,
// and tool registry.
type Mesh struct {
	opts         Options
	router       *router.Router
	orchestrator *workflow.Orchestrator
	tools        *tool.Registry
	agents       []*agent.Runtime
	schemas      *schema.Registry
	logger       logging.Logger
}

// New creates a Mesh with optional overrides. Any unset collaborator is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Config: config.Default(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(opts.Config.LoggerConfig())
	}
	if opts.PolicyStore == nil {
		opts.PolicyStore = policy.NewInMemoryStore()
	}
	if opts.Knowledge == nil {
		opts.Knowledge = knowledge.NewInMemoryStore()
	}
	if opts.Parser == nil {
		if opts.Generator != nil {
			opts.Parser = policy.NewLLMParser(opts.Generator, func(o *policy.LLMParserOptions) {
				o.Logger = opts.Logger
			})
		} else {
			opts.Parser = policy.NewStubParser()
		}
	}

	var metrics *metric.Metrics
	if opts.MetricsRegistry != nil {
		metrics = metric.New(opts.MetricsRegistry)
	}

	rt := router.New(func(o *router.Options) { o.Logger = opts.Logger })
	engine := validation.NewEngine(opts.Config.Validation)
	schemas := schema.NewRegistry()
	explainer := explain.New(func(o *explain.Options) {
		o.Generator = opts.Generator
		o.Logger = opts.Logger
	})

	agentOpts := func(o *agent.Options) {
		o.Logger = opts.Logger
		o.MailboxSize = opts.Config.Runtime.MailboxSize
	}
	agents := []*agent.Runtime{
		agent.NewPolicyAgent("", rt, opts.Parser, opts.PolicyStore, agentOpts),
		agent.NewValidationAgent("", rt, engine, opts.PolicyStore, agentOpts),
		agent.NewSchemaAgent("", rt, schemas, agentOpts),
		agent.NewRAGAgent("", rt, opts.Knowledge, agentOpts),
		agent.NewExplanationAgent("", rt, explainer, agentOpts),
	}
	for _, a := range agents {
		rt.Register(a)
	}

	orch := workflow.New(rt, func(o *workflow.Options) {
		o.Logger = opts.Logger
		o.Metrics = metrics
		o.StepTimeout = opts.Config.Runtime.StepTimeout.Std()
		o.MaxRetries = opts.Config.Runtime.MaxRetries
		o.RetryBaseDelay = opts.Config.Runtime.RetryBaseDelay.Std()
	})

	tools := tool.NewRegistry(func(o *tool.Options) { o.Logger = opts.Logger })
	tool.RegisterBuiltins(tools, orch)

	return &Mesh{
		opts:         opts,
		router:       rt,
		orchestrator: orch,
		tools:        tools,
		agents:       agents,
		schemas:      schemas,
		logger:       opts.Logger,
	}
}

// Start launches every agent and registers the built-in workflows.
func (m *Mesh) Start(ctx context.Context) error {
	if err := m.orchestrator.RegisterBuiltins(); err != nil {
		return err
	}
	for _, a := range m.agents {
		if err := a.Start(ctx); err != nil {
			return err
		}
	}
	m.logger.Info("mesh started", "agents", len(m.agents))
	return nil
}

// Stop drains and stops every agent. Safe to call once after Start.
func (m *Mesh) Stop(ctx context.Context) error {
	var firstErr error
	for _, a := range m.agents {
		if err := a.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Router exposes the underlying message router, e.g. for registering
// additional agents.
func (m *Mesh) Router() *router.Router { return m.router }

// Orchestrator exposes the workflow orchestrator.
func (m *Mesh) Orchestrator() *workflow.Orchestrator { return m.orchestrator }

// Tools exposes the tool registry for registering custom tools.
func (m *Mesh) Tools() *tool.Registry { return m.tools }

// CallTool invokes a registered tool by name through the uniform envelope.
func (m *Mesh) CallTool(ctx context.Context, name string, params map[string]any) (tool.Result, error) {
	return m.tools.Call(ctx, name, params)
}

// RegisterPolicy parses policy text into rules and stores them, returning the
// policy ID.
func (m *Mesh) RegisterPolicy(ctx context.Context, policyID, text string) (string, error) {
	return m.orchestrator.RegisterPolicy(ctx, policyID, text)
}

// Validate evaluates a record against a stored policy.
func (m *Mesh) Validate(ctx context.Context, policyID string, record core.Record) (validation.Result, error) {
	return m.orchestrator.Validate(ctx, policyID, record)
}

// RunKYC runs the customer verification checks.
func (m *Mesh) RunKYC(ctx context.Context, customer validation.Customer) (validation.KYCResult, error) {
	return m.orchestrator.RunKYC(ctx, customer)
}

// AssessRisk scores a transaction.
func (m *Mesh) AssessRisk(ctx context.Context, tx validation.Transaction, rctx validation.RiskContext) (validation.RiskResult, error) {
	return m.orchestrator.AssessRisk(ctx, tx, rctx)
}

// RegisterSchema adds a versioned schema to the registry.
func (m *Mesh) RegisterSchema(ctx context.Context, v schema.Version) error {
	return m.orchestrator.RegisterSchema(ctx, v)
}

// DetectSchemaDrift compares two schema versions.
func (m *Mesh) DetectSchemaDrift(ctx context.Context, old, next schema.Version) (schema.DriftResult, error) {
	return m.orchestrator.DetectSchemaDrift(ctx, old, next)
}

// ExecuteWorkflow runs a registered workflow to completion.
func (m *Mesh) ExecuteWorkflow(ctx context.Context, name string, req workflow.Request) workflow.Result {
	return m.orchestrator.ExecuteWorkflow(ctx, name, req)
}
