package core

import "context"

// State models the agent runtime lifecycle. Transitions are strictly
// Created -> Running -> Draining -> Stopped; terminal states never revert.
type State int32

const (
	// StateCreated is the initial state before Start.
	StateCreated State = iota
	// StateRunning means the agent is draining its mailbox in a loop.
	StateRunning
	// StateDraining means a stop was requested: in-flight work finishes,
	// new deliveries are refused.
	StateDraining
	// StateStopped is terminal.
	StateStopped
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Endpoint is anything the router can deliver envelopes to: agent instances
// and the orchestrator's reply sink both satisfy it. Deliver must never
// block; a saturated mailbox fails fast with KindMailboxFull and a refusing
// endpoint fails with KindAgentUnavailable.
type Endpoint interface {
	// ID returns the unique instance identifier.
	ID() string

	// Capability returns the capability domain this endpoint serves
	// ("policy", "validation", "schema", "rag", "explanation", ...).
	Capability() string

	// Deliver enqueues an envelope for processing.
	Deliver(env Envelope) error
}

// Agent extends Endpoint with the runtime lifecycle. One agent instance
// processes one envelope at a time; concurrency comes from running multiple
// instances of the same capability, never from interleaving messages within
// one instance.
type Agent interface {
	Endpoint

	// Start transitions Created -> Running and begins the mailbox loop.
	Start(ctx context.Context) error

	// Stop requests a graceful drain and blocks until Stopped or ctx expires.
	Stop(ctx context.Context) error

	// State reports the current lifecycle state.
	State() State
}
