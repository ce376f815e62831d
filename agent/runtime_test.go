package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govmesh/govmesh/core"
)

// captureSender records routed envelopes and signals each arrival.
type captureSender struct {
	mu        sync.Mutex
	envelopes []core.Envelope
	arrived   chan struct{}
}

func newCaptureSender() *captureSender {
	return &captureSender{arrived: make(chan struct{}, 64)}
}

func (c *captureSender) Route(env core.Envelope) error {
	c.mu.Lock()
	c.envelopes = append(c.envelopes, env)
	c.mu.Unlock()
	c.arrived <- struct{}{}
	return nil
}

func (c *captureSender) wait(t *testing.T, n int) []core.Envelope {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.arrived:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for envelope %d of %d", i+1, n)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Envelope, len(c.envelopes))
	copy(out, c.envelopes)
	return out
}

type echoPayload struct {
	Value string
}

func (echoPayload) Action() string { return "echo" }

func newEchoRuntime(t *testing.T, sender Sender) *Runtime {
	t.Helper()
	r := NewRuntime("echo-1", "echo", sender)
	r.Handle("echo", func(_ context.Context, env core.Envelope) (core.Response, error) {
		p := env.Payload.(echoPayload)
		return core.OK(p.Value), nil
	})
	return r
}

func startRuntime(t *testing.T, r *Runtime) {
	t.Helper()
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = r.Stop(ctx)
	})
}

func TestRuntimeLifecycle(t *testing.T) {
	r := newEchoRuntime(t, newCaptureSender())

	assert.Equal(t, core.StateCreated, r.State())
	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, core.StateRunning, r.State())

	err := r.Start(context.Background())
	assert.True(t, core.IsKind(err, core.KindAgentUnavailable), "second start refused")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
	assert.Equal(t, core.StateStopped, r.State())
}

func TestRuntimeProcessesEnvelope(t *testing.T) {
	sender := newCaptureSender()
	r := newEchoRuntime(t, sender)
	startRuntime(t, r)

	req := core.NewEnvelope("caller", "echo-1", "echo", echoPayload{Value: "hello"})
	require.NoError(t, r.Deliver(req))

	replies := sender.wait(t, 1)
	reply := replies[0]
	assert.Equal(t, core.ActionRespond, reply.Action)
	assert.Equal(t, "caller", reply.Recipient)
	assert.Equal(t, req.CorrelationID, reply.CorrelationID)

	rp := reply.Payload.(core.ResponsePayload)
	assert.True(t, rp.Response.Success)
	assert.Equal(t, "hello", rp.Response.Data)
}

func TestRuntimeUnknownAction(t *testing.T) {
	sender := newCaptureSender()
	r := newEchoRuntime(t, sender)
	r.Handle("noop", func(_ context.Context, env core.Envelope) (core.Response, error) {
		return core.OK(nil), nil
	})
	startRuntime(t, r)

	req := core.NewEnvelope("caller", "echo-1", "mystery", nil)
	require.NoError(t, r.Deliver(req))

	reply := sender.wait(t, 1)[0]
	rp := reply.Payload.(core.ResponsePayload)
	assert.False(t, rp.Response.Success)
	assert.Contains(t, rp.Response.ErrorMessage, "action not supported")
}

func TestRuntimePanicRecovery(t *testing.T) {
	sender := newCaptureSender()
	r := NewRuntime("panicky", "echo", sender)
	r.Handle("echo", func(_ context.Context, _ core.Envelope) (core.Response, error) {
		panic("boom")
	})
	startRuntime(t, r)

	require.NoError(t, r.Deliver(core.NewEnvelope("caller", "panicky", "echo", echoPayload{})))

	reply := sender.wait(t, 1)[0]
	rp := reply.Payload.(core.ResponsePayload)
	assert.False(t, rp.Response.Success)
	assert.Equal(t, core.KindInternal, rp.Response.ErrorKind)

	// The loop survived the panic.
	require.NoError(t, r.Deliver(core.NewEnvelope("caller", "panicky", "echo", echoPayload{})))
	sender.wait(t, 1)
}

func TestRuntimeHandlerErrorBecomesFailedResponse(t *testing.T) {
	sender := newCaptureSender()
	r := NewRuntime("failing", "echo", sender)
	r.Handle("echo", func(_ context.Context, _ core.Envelope) (core.Response, error) {
		return core.Response{}, core.NewError(core.KindPolicyNotFound, "no such policy")
	})
	startRuntime(t, r)

	require.NoError(t, r.Deliver(core.NewEnvelope("caller", "failing", "echo", echoPayload{})))

	reply := sender.wait(t, 1)[0]
	rp := reply.Payload.(core.ResponsePayload)
	assert.False(t, rp.Response.Success)
	assert.Equal(t, core.KindPolicyNotFound, rp.Response.ErrorKind)
}

func TestRuntimeMailboxFull(t *testing.T) {
	sender := newCaptureSender()
	block := make(chan struct{})
	r := NewRuntime("slow", "echo", sender, func(o *Options) { o.MailboxSize = 1 })
	r.Handle("echo", func(_ context.Context, _ core.Envelope) (core.Response, error) {
		<-block
		return core.OK(nil), nil
	})
	startRuntime(t, r)
	defer close(block)

	// First envelope occupies the worker, second fills the buffer; the
	// third must be refused without blocking.
	require.NoError(t, r.Deliver(core.NewEnvelope("caller", "slow", "echo", echoPayload{})))
	var err error
	deadline := time.After(2 * time.Second)
	for {
		err = r.Deliver(core.NewEnvelope("caller", "slow", "echo", echoPayload{}))
		if err != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("mailbox never filled")
		default:
		}
	}
	assert.True(t, core.IsKind(err, core.KindMailboxFull))
}

func TestRuntimeDeliverAfterStop(t *testing.T) {
	r := newEchoRuntime(t, newCaptureSender())
	require.NoError(t, r.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))

	err := r.Deliver(core.NewEnvelope("caller", "echo-1", "echo", echoPayload{}))
	assert.True(t, core.IsKind(err, core.KindAgentUnavailable))
}

func TestRuntimeStopDrainsMailbox(t *testing.T) {
	sender := newCaptureSender()
	r := newEchoRuntime(t, sender)
	require.NoError(t, r.Start(context.Background()))

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Deliver(core.NewEnvelope("caller", "echo-1", "echo", echoPayload{Value: "v"})))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Len(t, sender.envelopes, 5, "buffered envelopes processed before stopping")
}

func TestRuntimeFIFOPerInstance(t *testing.T) {
	sender := newCaptureSender()
	r := newEchoRuntime(t, sender)
	startRuntime(t, r)

	values := []string{"a", "b", "c", "d", "e"}
	for _, v := range values {
		require.NoError(t, r.Deliver(core.NewEnvelope("caller", "echo-1", "echo", echoPayload{Value: v})))
	}

	replies := sender.wait(t, len(values))
	for i, reply := range replies {
		rp := reply.Payload.(core.ResponsePayload)
		assert.Equal(t, values[i], rp.Response.Data)
	}
}

func TestRuntimeDiscardsResponseEnvelopes(t *testing.T) {
	sender := newCaptureSender()
	r := newEchoRuntime(t, sender)
	startRuntime(t, r)

	resp := core.NewResponseEnvelope(
		core.NewEnvelope("echo-1", "caller", "echo", echoPayload{}),
		core.OK(nil),
	)
	resp.Recipient = "echo-1"
	require.NoError(t, r.Deliver(resp))

	// A real request after it still gets answered; the response envelope
	// produced no reply of its own.
	require.NoError(t, r.Deliver(core.NewEnvelope("caller", "echo-1", "echo", echoPayload{Value: "x"})))
	replies := sender.wait(t, 1)
	assert.Len(t, replies, 1)
}
