// Package agent provides the generic worker runtime and the concrete agents
// built on it: policy, validation, schema, rag and explanation. A runtime
// owns a bounded mailbox and an action table; it processes one envelope at a
// time, so action implementations never need internal locking.
package agent

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/logging"
)

// Handler services one action. The returned response is sent back to the
// envelope's sender; returning an error is equivalent to returning
// core.Fail(err).
type Handler func(ctx context.Context, env core.Envelope) (core.Response, error)

// Sender is where response envelopes go; satisfied by *router.Router.
type Sender interface {
	Route(env core.Envelope) error
}

// Options configure a Runtime.
type Options struct {
	MailboxSize int
	Logger      logging.Logger
}

// Runtime is the generic agent worker. Lifecycle is strictly
// Created -> Running -> Draining -> Stopped; Deliver is non-blocking and
// refuses work outside Running.
type Runtime struct {
	id         string
	capability string
	sender     Sender
	logger     logging.Logger

	handlers map[string]Handler

	mu      sync.Mutex
	mailbox chan core.Envelope
	state   atomic.Int32
	ctx     context.Context
	done    chan struct{}
}

var _ core.Agent = (*Runtime)(nil)

// NewRuntime creates a runtime for one capability. Handlers must be
// registered before Start.
func NewRuntime(id, capability string, sender Sender, optFns ...func(o *Options)) *Runtime {
	opts := Options{
		MailboxSize: 64,
		Logger:      logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MailboxSize < 1 {
		opts.MailboxSize = 1
	}
	if id == "" {
		id = capability + "-" + core.NewID()
	}

	return &Runtime{
		id:         id,
		capability: capability,
		sender:     sender,
		logger:     opts.Logger,
		handlers:   make(map[string]Handler),
		mailbox:    make(chan core.Envelope, opts.MailboxSize),
		done:       make(chan struct{}),
	}
}

// Handle registers the handler for an action. Must be called before Start.
func (r *Runtime) Handle(action string, h Handler) {
	r.handlers[action] = h
}

// ID implements core.Endpoint.
func (r *Runtime) ID() string { return r.id }

// Capability implements core.Endpoint.
func (r *Runtime) Capability() string { return r.capability }

// State implements core.Agent.
func (r *Runtime) State() core.State { return core.State(r.state.Load()) }

// Deliver implements core.Endpoint. It enqueues without blocking: a full
// mailbox fails with KindMailboxFull and anything but the Running state
// fails with KindAgentUnavailable.
func (r *Runtime) Deliver(env core.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State() != core.StateRunning {
		return core.NewError(core.KindAgentUnavailable, "agent %q is %s", r.id, r.State())
	}
	select {
	case r.mailbox <- env:
		return nil
	default:
		return core.NewError(core.KindMailboxFull, "agent %q mailbox is full", r.id)
	}
}

// Start implements core.Agent.
func (r *Runtime) Start(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(core.StateCreated), int32(core.StateRunning)) {
		return core.NewError(core.KindAgentUnavailable, "agent %q already started (state %s)", r.id, r.State())
	}
	r.ctx = ctx
	go r.loop()

	r.logger.Info("agent started", "agent_id", r.id, "capability", r.capability)
	return nil
}

// Stop implements core.Agent. It transitions to Draining, lets buffered
// envelopes finish, and blocks until the loop exits or ctx expires.
func (r *Runtime) Stop(ctx context.Context) error {
	if r.state.CompareAndSwap(int32(core.StateCreated), int32(core.StateStopped)) {
		close(r.done)
		return nil
	}
	if r.state.CompareAndSwap(int32(core.StateRunning), int32(core.StateDraining)) {
		// Deliver holds the same lock and checks state first, so nothing can
		// send on the mailbox after this close.
		r.mu.Lock()
		close(r.mailbox)
		r.mu.Unlock()
	}

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return core.WrapError(core.KindAgentUnavailable, ctx.Err(), "agent %q did not stop in time", r.id)
	}
}

func (r *Runtime) loop() {
	defer func() {
		r.state.Store(int32(core.StateStopped))
		close(r.done)
		r.logger.Info("agent stopped", "agent_id", r.id)
	}()

	for env := range r.mailbox {
		r.process(env)
	}
}

func (r *Runtime) process(env core.Envelope) {
	// Responses terminate at an agent; never answer one with another.
	if env.Action == core.ActionRespond {
		r.logger.Warn("discarding response envelope addressed to an agent",
			"agent_id", r.id, "envelope_id", env.ID)
		return
	}

	start := time.Now()
	resp := r.invoke(env)
	logging.LogActionResult(r.logger, r.id, env.Action, time.Since(start), resp.Err())

	if r.sender == nil {
		return
	}
	reply := core.NewResponseEnvelope(env, resp)
	if err := r.sender.Route(reply); err != nil {
		r.logger.Error("response delivery failed",
			"agent_id", r.id, "correlation_id", env.CorrelationID, "error", err)
	}
}

// invoke dispatches to the registered handler, converting panics and errors
// into failed responses at the runtime boundary so one bad envelope can
// never take the loop down.
func (r *Runtime) invoke(env core.Envelope) (resp core.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("action panicked", "agent_id", r.id, "action", env.Action, "panic", rec)
			resp = core.Fail(core.NewError(core.KindInternal, "action %q panicked: %v", env.Action, rec))
		}
	}()

	h, ok := r.handlers[env.Action]
	if !ok {
		return core.Response{
			Success:      false,
			ErrorKind:    core.KindInvalidParameters,
			ErrorMessage: fmt.Sprintf("action not supported: %q", env.Action),
		}
	}

	out, err := h(r.ctx, env)
	if err != nil {
		return core.Fail(err)
	}
	return out
}

// payloadAs extracts a typed payload or reports KindInvalidParameters. The
// router already matched action names, so a miss here means a handler was
// registered under the wrong action.
func payloadAs[T core.Payload](env core.Envelope) (T, error) {
	p, ok := env.Payload.(T)
	if !ok {
		var zero T
		return zero, core.NewError(core.KindInvalidParameters,
			"action %q received payload type %T", env.Action, env.Payload)
	}
	return p, nil
}
