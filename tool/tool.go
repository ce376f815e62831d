// Package tool exposes governance operations as named, schema-validated
// callables. A Registry holds tools by name and invokes them through a single
// Call entry point that validates parameters up front and folds every outcome
// into a uniform Result, so callers (CLIs, HTTP handlers, model function
// calling) never need to special-case individual tools.
package tool

import (
	"context"
	"sort"
	"sync"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/internal/util"
	"github.com/govmesh/govmesh/logging"
)

// Tool is a named operation with a JSON-Schema-like parameter contract.
//
// Implementations should be safe for concurrent use; the registry performs no
// per-tool locking around Run.
type Tool interface {
	// Name returns the unique tool identifier (snake_case recommended).
	Name() string

	// Description explains what the tool does, in one imperative sentence.
	Description() string

	// Parameters returns the schema the arguments are validated against.
	Parameters() map[string]any

	// Run executes the tool with already-validated arguments.
	Run(ctx context.Context, args map[string]any) (any, error)
}

// Result is the uniform envelope every tool invocation resolves to.
// Success is true iff the tool ran and returned without error; otherwise
// Error carries the human-readable reason.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Options configures a Registry.
type Options struct {
	Logger logging.Logger
}

// Registry holds tools by name and dispatches calls to them.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger logging.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(optFns ...func(o *Options)) *Registry {
	opts := Options{
		Logger: logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		tools:  make(map[string]Tool),
		logger: opts.Logger,
	}
}

// Register adds a tool, replacing any previous tool with the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Call looks up a tool by name, validates params against its schema and runs
// it. The returned Result always reflects the outcome; the error additionally
// carries the failure kind (tool_not_found, invalid_parameters, or whatever
// the tool itself returned) for callers that classify errors.
func (r *Registry) Call(ctx context.Context, name string, params map[string]any) (Result, error) {
	t, ok := r.Get(name)
	if !ok {
		err := core.NewError(core.KindToolNotFound, "tool not found: %s", name)
		return Result{Success: false, Error: err.Error()}, err
	}

	if params == nil {
		params = map[string]any{}
	}

	if err := util.ValidateParameters(params, t.Parameters()); err != nil {
		werr := core.WrapError(core.KindInvalidParameters, err, "invalid parameters for tool %s", name)
		return Result{Success: false, Error: werr.Error()}, werr
	}

	data, err := t.Run(ctx, params)
	if err != nil {
		r.logger.Warn("tool call failed", "tool", name, "error", err)
		return Result{Success: false, Error: err.Error()}, err
	}

	return Result{Success: true, Data: data}, nil
}
