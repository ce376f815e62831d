package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govmesh/govmesh/core"
)

type stubPayload struct {
	action string
}

func (p stubPayload) Action() string { return p.action }

type stubEndpoint struct {
	id         string
	capability string
	delivered  []core.Envelope
	deliverErr error
}

func (s *stubEndpoint) ID() string         { return s.id }
func (s *stubEndpoint) Capability() string { return s.capability }
func (s *stubEndpoint) Deliver(env core.Envelope) error {
	if s.deliverErr != nil {
		return s.deliverErr
	}
	s.delivered = append(s.delivered, env)
	return nil
}

func newEnvelope(recipient, action string) core.Envelope {
	return core.NewEnvelope("sender", recipient, action, stubPayload{action: action})
}

func TestRouteDirect(t *testing.T) {
	r := New()
	ep := &stubEndpoint{id: "agent-1", capability: "validation"}
	r.Register(ep)

	err := r.Route(newEnvelope("agent-1", "evaluate"))

	require.NoError(t, err)
	require.Len(t, ep.delivered, 1)
	assert.Equal(t, "evaluate", ep.delivered[0].Action)
}

func TestRouteUnknownRecipient(t *testing.T) {
	r := New()

	err := r.Route(newEnvelope("nobody", "evaluate"))

	assert.True(t, core.IsKind(err, core.KindAgentNotFound))
}

func TestRouteActionMismatch(t *testing.T) {
	r := New()
	r.Register(&stubEndpoint{id: "agent-1"})

	env := core.NewEnvelope("sender", "agent-1", "evaluate", stubPayload{action: "other"})
	err := r.Route(env)

	assert.True(t, core.IsKind(err, core.KindInvalidParameters))
}

func TestRouteByCapabilityRoundRobin(t *testing.T) {
	r := New()
	a := &stubEndpoint{id: "a", capability: "validation"}
	b := &stubEndpoint{id: "b", capability: "validation"}
	r.Register(a)
	r.Register(b)

	for i := 0; i < 4; i++ {
		require.NoError(t, r.RouteByCapability("validation", newEnvelope("", "evaluate")))
	}

	assert.Len(t, a.delivered, 2)
	assert.Len(t, b.delivered, 2)
	assert.Equal(t, "a", a.delivered[0].Recipient)
}

func TestRouteByCapabilityNoEndpoint(t *testing.T) {
	r := New()

	err := r.RouteByCapability("policy", newEnvelope("", "parse"))

	assert.True(t, core.IsKind(err, core.KindAgentNotFound))
}

func TestRouteDeliveryErrorPropagates(t *testing.T) {
	r := New()
	full := &stubEndpoint{
		id: "busy", capability: "validation",
		deliverErr: core.NewError(core.KindMailboxFull, "mailbox full"),
	}
	r.Register(full)

	err := r.RouteByCapability("validation", newEnvelope("", "evaluate"))

	assert.True(t, core.IsKind(err, core.KindMailboxFull))
}

func TestDeregister(t *testing.T) {
	r := New()
	a := &stubEndpoint{id: "a", capability: "validation"}
	b := &stubEndpoint{id: "b", capability: "validation"}
	r.Register(a)
	r.Register(b)

	r.Deregister("a")

	assert.Equal(t, []string{"b"}, r.Endpoints("validation"))
	require.NoError(t, r.RouteByCapability("validation", newEnvelope("", "evaluate")))
	assert.Len(t, b.delivered, 1)

	r.Deregister("b")
	err := r.RouteByCapability("validation", newEnvelope("", "evaluate"))
	assert.True(t, core.IsKind(err, core.KindAgentNotFound))
}

func TestRegisterReplacesEndpoint(t *testing.T) {
	r := New()
	old := &stubEndpoint{id: "a", capability: "validation"}
	r.Register(old)
	repl := &stubEndpoint{id: "a", capability: "schema"}
	r.Register(repl)

	assert.Empty(t, r.Endpoints("validation"))
	assert.Equal(t, []string{"a"}, r.Endpoints("schema"))
}
