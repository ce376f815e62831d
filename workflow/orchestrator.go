package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/logging"
	"github.com/govmesh/govmesh/metric"
	"github.com/govmesh/govmesh/router"
)

// Options configure an Orchestrator.
type Options struct {
	// StepTimeout bounds each await for a step response.
	StepTimeout time.Duration
	// MaxRetries is the number of additional attempts after the first for
	// transient failures (mailbox full, agent unavailable, step timeout).
	MaxRetries int
	// RetryBaseDelay seeds the exponential backoff between attempts.
	RetryBaseDelay time.Duration
	Logger         logging.Logger
	Metrics        *metric.Metrics
}

// Orchestrator executes registered workflow definitions over a router. It is
// itself a router endpoint: agents address their response envelopes to it,
// and Deliver hands each response to the execution waiting on its
// correlation id. Responses for cancelled correlations are discarded.
type Orchestrator struct {
	id     string
	router *router.Router
	logger logging.Logger
	opts   Options

	mu      sync.Mutex
	defs    map[string]Definition
	waiters map[string]chan core.Response
}

var _ core.Endpoint = (*Orchestrator)(nil)

// New creates an Orchestrator and registers it on the router so agents can
// reach it by id.
func New(r *router.Router, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		StepTimeout:    5 * time.Second,
		MaxRetries:     2,
		RetryBaseDelay: 50 * time.Millisecond,
		Logger:         logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	o := &Orchestrator{
		id:      "orchestrator-" + core.NewID(),
		router:  r,
		logger:  opts.Logger,
		opts:    opts,
		defs:    make(map[string]Definition),
		waiters: make(map[string]chan core.Response),
	}
	r.Register(o)
	return o
}

// ID implements core.Endpoint.
func (o *Orchestrator) ID() string { return o.id }

// Capability implements core.Endpoint. The orchestrator is not a capability
// worker, so it is never selected by capability routing.
func (o *Orchestrator) Capability() string { return "" }

// Deliver implements core.Endpoint: it accepts response envelopes from
// agents and wakes the step waiting on the correlation id. Never blocks.
func (o *Orchestrator) Deliver(env core.Envelope) error {
	rp, ok := env.Payload.(core.ResponsePayload)
	if !ok {
		return core.NewError(core.KindInvalidParameters,
			"orchestrator only accepts response envelopes, got action %q", env.Action)
	}

	o.mu.Lock()
	ch, waiting := o.waiters[env.CorrelationID]
	o.mu.Unlock()

	if !waiting {
		o.logger.Debug("discarding response for cancelled correlation",
			"correlation_id", env.CorrelationID)
		return nil
	}
	select {
	case ch <- rp.Response:
	default:
	}
	return nil
}

// RegisterWorkflow adds a definition. Registration is a write-once
// operation per name.
func (o *Orchestrator) RegisterWorkflow(def Definition) error {
	if err := def.validate(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.defs[def.Name]; exists {
		return core.NewError(core.KindWriteConflict, "workflow %q already registered", def.Name)
	}
	o.defs[def.Name] = def
	return nil
}

// Workflows lists the registered workflow names.
func (o *Orchestrator) Workflows() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.defs))
	for name := range o.defs {
		names = append(names, name)
	}
	return names
}

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepFailed
	stepSkipped
)

type stepOutcome struct {
	id   StepID
	resp core.Response
	err  error
}

// Execute runs a registered workflow to a terminal state. Ready steps are
// dispatched concurrently; once a step fails fatally no further steps are
// dispatched, but in-flight steps are awaited so the partial result is
// consistent.
func (o *Orchestrator) Execute(ctx context.Context, name string, req Request) Result {
	start := time.Now()

	o.mu.Lock()
	def, ok := o.defs[name]
	o.mu.Unlock()

	res := Result{Workflow: name, State: StatePending, Steps: make(map[StepID]core.Response)}
	if !ok {
		res.State = StateFailed
		res.Err = core.NewError(core.KindInvalidParameters, "unknown workflow %q", name)
		res.ErrorKind = core.KindOf(res.Err)
		res.Duration = time.Since(start)
		return res
	}

	res.State = StateRunning
	status := make(map[StepID]stepStatus, len(def.Steps))
	for _, s := range def.Steps {
		status[s.ID] = stepPending
	}

	outcomes := make(chan stepOutcome, len(def.Steps))
	running := 0
	var firstErr error

	dispatch := func() {
		if firstErr != nil {
			return
		}
		for progress := true; progress; {
			progress = false
			for _, s := range def.Steps {
				if status[s.ID] != stepPending {
					continue
				}
				ready, blocked := depsState(s, status)
				if blocked {
					status[s.ID] = stepSkipped
					res.Skipped = append(res.Skipped, s.ID)
					progress = true
					continue
				}
				if !ready {
					continue
				}
				if s.Predicate != nil && !s.Predicate(res.Steps) {
					status[s.ID] = stepSkipped
					res.Skipped = append(res.Skipped, s.ID)
					progress = true
					continue
				}
				status[s.ID] = stepRunning
				running++
				go o.runStep(ctx, s, req, snapshot(res.Steps), outcomes)
			}
		}
	}

	dispatch()
	for running > 0 {
		select {
		case out := <-outcomes:
			running--
			if out.err != nil {
				status[out.id] = stepFailed
				if firstErr == nil {
					firstErr = out.err
				}
				o.opts.Metrics.ObserveStep(string(out.id), "failed")
			} else {
				res.Steps[out.id] = out.resp
				if out.resp.Success {
					status[out.id] = stepDone
					o.opts.Metrics.ObserveStep(string(out.id), "completed")
				} else {
					status[out.id] = stepFailed
					if firstErr == nil {
						firstErr = out.resp.Err()
					}
					o.opts.Metrics.ObserveStep(string(out.id), "failed")
				}
			}
			dispatch()

		case <-ctx.Done():
			// In-flight steps notice the same context; their responses, if
			// any, land on cancelled correlations and are discarded.
			res.State = StateTimedOut
			res.Err = core.WrapError(core.KindStepTimeout, ctx.Err(), "workflow %q cancelled", name)
			res.ErrorKind = core.KindOf(res.Err)
			res.Duration = time.Since(start)
			o.finish(res)
			return res
		}
	}

	if firstErr != nil {
		res.State = StateFailed
		res.Err = firstErr
		res.ErrorKind = core.KindOf(firstErr)
	} else {
		res.State = StateCompleted
	}
	res.Duration = time.Since(start)
	o.finish(res)
	return res
}

func (o *Orchestrator) finish(res Result) {
	o.opts.Metrics.ObserveWorkflow(res.Workflow, string(res.State), res.Duration)
	logging.LogWorkflowResult(o.logger, res.Workflow, string(res.State), len(res.Steps), res.Duration)
}

// depsState reports whether a step is ready (all dependencies done) or
// permanently blocked (a dependency failed or was skipped).
func depsState(s Step, status map[StepID]stepStatus) (ready, blocked bool) {
	ready = true
	for _, dep := range s.DependsOn {
		switch status[dep] {
		case stepDone:
		case stepFailed, stepSkipped:
			return false, true
		default:
			ready = false
		}
	}
	return ready, false
}

func snapshot(m map[StepID]core.Response) map[StepID]core.Response {
	out := make(map[StepID]core.Response, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// runStep executes one step with bounded retries. Each attempt uses a fresh
// envelope and correlation id so a late response from a timed-out attempt
// cannot be mistaken for the current one.
func (o *Orchestrator) runStep(ctx context.Context, s Step, req Request, prior map[StepID]core.Response, outcomes chan<- stepOutcome) {
	payload, err := s.Payload(req, prior)
	if err != nil {
		outcomes <- stepOutcome{id: s.ID, err: err}
		return
	}

	var lastErr error
	delay := o.opts.RetryBaseDelay

	for attempt := 0; attempt <= o.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			o.opts.Metrics.ObserveRetry()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				outcomes <- stepOutcome{id: s.ID, err: core.WrapError(core.KindStepTimeout, ctx.Err(), "step %q cancelled", s.ID)}
				return
			}
			delay *= 2
		}

		env := core.NewEnvelope(o.id, "", s.Action, payload)
		ch := o.addWaiter(env.CorrelationID)

		if err := o.router.RouteByCapability(s.Capability, env); err != nil {
			o.removeWaiter(env.CorrelationID)
			if core.Transient(err) {
				lastErr = err
				continue
			}
			outcomes <- stepOutcome{id: s.ID, err: err}
			return
		}
		o.opts.Metrics.ObserveRouted()

		select {
		case resp := <-ch:
			o.removeWaiter(env.CorrelationID)
			outcomes <- stepOutcome{id: s.ID, resp: resp}
			return
		case <-time.After(o.opts.StepTimeout):
			o.removeWaiter(env.CorrelationID)
			lastErr = core.NewError(core.KindStepTimeout, "step %q timed out after %s", s.ID, o.opts.StepTimeout)
			o.logger.Warn("step timed out", "step", s.ID, "attempt", attempt+1)
		case <-ctx.Done():
			o.removeWaiter(env.CorrelationID)
			outcomes <- stepOutcome{id: s.ID, err: core.WrapError(core.KindStepTimeout, ctx.Err(), "step %q cancelled", s.ID)}
			return
		}
	}

	outcomes <- stepOutcome{id: s.ID, err: lastErr}
}

func (o *Orchestrator) addWaiter(correlationID string) chan core.Response {
	ch := make(chan core.Response, 1)
	o.mu.Lock()
	o.waiters[correlationID] = ch
	o.mu.Unlock()
	return ch
}

func (o *Orchestrator) removeWaiter(correlationID string) {
	o.mu.Lock()
	delete(o.waiters, correlationID)
	o.mu.Unlock()
}
