// Package router delivers envelopes between registered endpoints. Direct
// routing addresses an endpoint by ID; capability routing picks one of the
// endpoints advertising a capability in round-robin order.
package router

import (
	"sync"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/logging"
)

// Options configure a Router.
type Options struct {
	Logger logging.Logger
}

// Router keeps the endpoint registry and routes envelopes. Registration is
// explicit; there is no discovery. Safe for concurrent use.
type Router struct {
	mu           sync.RWMutex
	endpoints    map[string]core.Endpoint
	byCapability map[string][]string
	rrIndex      map[string]int
	logger       logging.Logger
}

// New creates an empty Router.
func New(optFns ...func(o *Options)) *Router {
	opts := Options{Logger: logging.NewDefaultSlogLogger()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{
		endpoints:    make(map[string]core.Endpoint),
		byCapability: make(map[string][]string),
		rrIndex:      make(map[string]int),
		logger:       opts.Logger,
	}
}

// Register adds an endpoint to the registry. Registering an ID twice
// replaces the previous endpoint.
func (r *Router) Register(ep core.Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, capability := ep.ID(), ep.Capability()
	if prev, ok := r.endpoints[id]; ok {
		r.removeFromCapability(prev.Capability(), id)
	}
	r.endpoints[id] = ep
	if capability != "" {
		r.byCapability[capability] = append(r.byCapability[capability], id)
	}

	r.logger.Debug("endpoint registered", "endpoint_id", id, "capability", capability)
}

// Deregister removes an endpoint. Unknown IDs are a no-op.
func (r *Router) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ep, ok := r.endpoints[id]
	if !ok {
		return
	}
	delete(r.endpoints, id)
	r.removeFromCapability(ep.Capability(), id)

	r.logger.Debug("endpoint deregistered", "endpoint_id", id)
}

// Endpoints returns the IDs currently registered for a capability, in
// registration order.
func (r *Router) Endpoints(capability string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.byCapability[capability]))
	copy(out, r.byCapability[capability])
	return out
}

// Route delivers env to the endpoint named by env.Recipient. Delivery is a
// single non-blocking handoff; mailbox and availability errors surface to
// the caller unchanged.
func (r *Router) Route(env core.Envelope) error {
	if err := checkAction(env); err != nil {
		return err
	}

	r.mu.RLock()
	ep, ok := r.endpoints[env.Recipient]
	r.mu.RUnlock()
	if !ok {
		return core.NewError(core.KindAgentNotFound, "no endpoint with id %q", env.Recipient)
	}

	return r.deliver(ep, env)
}

// RouteByCapability picks the next endpoint advertising capability in
// round-robin order, stamps it as the recipient and delivers env.
func (r *Router) RouteByCapability(capability string, env core.Envelope) error {
	if err := checkAction(env); err != nil {
		return err
	}

	r.mu.Lock()
	ids := r.byCapability[capability]
	if len(ids) == 0 {
		r.mu.Unlock()
		return core.NewError(core.KindAgentNotFound, "no endpoint with capability %q", capability)
	}
	idx := r.rrIndex[capability] % len(ids)
	r.rrIndex[capability] = idx + 1
	ep := r.endpoints[ids[idx]]
	r.mu.Unlock()

	env.Recipient = ep.ID()
	return r.deliver(ep, env)
}

func (r *Router) deliver(ep core.Endpoint, env core.Envelope) error {
	if err := ep.Deliver(env); err != nil {
		r.logger.Warn("delivery failed",
			"endpoint_id", ep.ID(),
			"action", env.Action,
			"error", err,
		)
		return err
	}
	return nil
}

// removeFromCapability drops id from a capability list; caller holds the
// write lock.
func (r *Router) removeFromCapability(capability, id string) {
	ids := r.byCapability[capability]
	for i, cur := range ids {
		if cur == id {
			r.byCapability[capability] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(r.byCapability[capability]) == 0 {
		delete(r.byCapability, capability)
		delete(r.rrIndex, capability)
	}
}

// checkAction rejects envelopes whose declared action disagrees with the
// payload's, which would otherwise dispatch the wrong handler.
func checkAction(env core.Envelope) error {
	if env.Action == "" {
		return core.NewError(core.KindInvalidParameters, "envelope %s has no action", env.ID)
	}
	if env.Payload != nil && env.Payload.Action() != env.Action {
		return core.NewError(core.KindInvalidParameters,
			"envelope %s declares action %q but carries a %q payload",
			env.ID, env.Action, env.Payload.Action())
	}
	return nil
}
