// Package workflow defines named step graphs over agents and executes them:
// ready steps fan out concurrently, responses are matched by correlation id,
// transient failures are retried with exponential backoff, and a fatal step
// failure yields a partial result plus the first error.
package workflow

import (
	"time"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/schema"
	"github.com/govmesh/govmesh/validation"
)

// State is the workflow lifecycle. Terminal states are final; the Result
// carrying one is immutable once returned.
type State string

const (
	// StatePending means the workflow has been resolved but not started.
	StatePending State = "pending"
	// StateRunning means steps are executing.
	StateRunning State = "running"
	// StateCompleted means every non-skipped step succeeded.
	StateCompleted State = "completed"
	// StateFailed means a step exhausted its retries or failed fatally.
	StateFailed State = "failed"
	// StateTimedOut means the caller's context expired mid-execution.
	StateTimedOut State = "timed_out"
)

// StepID names a step within one workflow definition.
type StepID string

// Request carries the caller's input to a workflow execution. Only the
// fields a given workflow reads need to be set.
type Request struct {
	PolicyID   string        `json:"policy_id,omitempty"`
	PolicyText string        `json:"policy_text,omitempty"`
	RuleSet    *core.RuleSet `json:"rule_set,omitempty"`
	Record     core.Record   `json:"record,omitempty"`

	Customer *validation.Customer `json:"customer,omitempty"`

	Transaction *validation.Transaction `json:"transaction,omitempty"`
	RiskContext validation.RiskContext  `json:"risk_context,omitempty"`

	OldSchema *schema.Version `json:"old_schema,omitempty"`
	NewSchema *schema.Version `json:"new_schema,omitempty"`
	// ApproveBreaking authorizes migration planning for breaking drift.
	ApproveBreaking bool `json:"approve_breaking,omitempty"`

	Query string `json:"query,omitempty"`
}

// Step is one node of a workflow graph. Payload builds the envelope payload
// from the request and the outputs of completed steps; a Payload error fails
// the step without dispatching. Predicate, when set, gates dispatch on prior
// outputs: a false predicate skips the step and everything depending on it.
type Step struct {
	ID         StepID
	Capability string
	Action     string
	DependsOn  []StepID
	Predicate  func(prior map[StepID]core.Response) bool
	Payload    func(req Request, prior map[StepID]core.Response) (core.Payload, error)
}

// Definition is a named, static step graph resolved at registration time.
type Definition struct {
	Name  string
	Steps []Step
}

// validate checks the graph is well formed: unique step ids and dependency
// references that exist. Cycles surface at execution as steps that never
// become ready; definitions are small enough that this is caught in tests.
func (d Definition) validate() error {
	if d.Name == "" {
		return core.NewError(core.KindInvalidParameters, "workflow has no name")
	}
	if len(d.Steps) == 0 {
		return core.NewError(core.KindInvalidParameters, "workflow %q has no steps", d.Name)
	}
	ids := make(map[StepID]struct{}, len(d.Steps))
	for _, s := range d.Steps {
		if s.ID == "" {
			return core.NewError(core.KindInvalidParameters, "workflow %q has a step without id", d.Name)
		}
		if _, dup := ids[s.ID]; dup {
			return core.NewError(core.KindInvalidParameters, "workflow %q has duplicate step %q", d.Name, s.ID)
		}
		ids[s.ID] = struct{}{}
		if s.Payload == nil {
			return core.NewError(core.KindInvalidParameters, "workflow %q step %q has no payload builder", d.Name, s.ID)
		}
	}
	for _, s := range d.Steps {
		for _, dep := range s.DependsOn {
			if _, ok := ids[dep]; !ok {
				return core.NewError(core.KindInvalidParameters,
					"workflow %q step %q depends on unknown step %q", d.Name, s.ID, dep)
			}
		}
	}
	return nil
}

// Result is the immutable outcome of one workflow execution. Steps holds
// the response of every step that produced one; skipped and undispatched
// steps are absent.
type Result struct {
	Workflow  string                   `json:"workflow"`
	State     State                    `json:"state"`
	Steps     map[StepID]core.Response `json:"steps"`
	Skipped   []StepID                 `json:"skipped,omitempty"`
	Err       error                    `json:"-"`
	ErrorKind core.Kind                `json:"error_kind,omitempty"`
	Duration  time.Duration            `json:"duration"`
}

// Output returns the data of a successful step, or nil when the step did not
// complete successfully.
func (r Result) Output(id StepID) any {
	resp, ok := r.Steps[id]
	if !ok || !resp.Success {
		return nil
	}
	return resp.Data
}
