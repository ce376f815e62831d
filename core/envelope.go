package core

import (
	"time"

	"github.com/google/uuid"
)

// ActionRespond is the reserved action carried by response envelopes produced
// at the agent runtime boundary.
const ActionRespond = "respond"

// Payload is the tagged-union contract for envelope payloads. Every concrete
// payload type declares the single action it belongs to, which lets the
// router reject mismatched or missing payloads before any business logic
// sees them.
type Payload interface {
	Action() string
}

// Envelope is the addressed unit of inter-agent communication. It is
// immutable once handed to the router: the router owns it until delivery,
// then the recipient owns it until a response envelope is produced.
//
// Recipient is either a concrete agent id or a capability name; the router
// resolves capability names to one live instance.
type Envelope struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Sender        string    `json:"sender"`
	Recipient     string    `json:"recipient"`
	Action        string    `json:"action"`
	Payload       Payload   `json:"payload"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEnvelope builds an envelope with a fresh id and UTC timestamp. The
// correlation id defaults to the envelope's own id so a bare request is its
// own correlation root; use WithCorrelation to join an existing exchange.
func NewEnvelope(sender, recipient, action string, payload Payload) Envelope {
	id := NewID()
	return Envelope{
		ID:            id,
		CorrelationID: id,
		Sender:        sender,
		Recipient:     recipient,
		Action:        action,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

// WithCorrelation returns a copy of the envelope bound to an existing
// correlation id.
func (e Envelope) WithCorrelation(correlationID string) Envelope {
	e.CorrelationID = correlationID
	return e
}

// Response is the uniform outcome shape produced by agent actions and
// tool-style calls: success with data, or a stable error kind plus message.
// No raw internal state crosses this boundary.
type Response struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	ErrorKind    Kind   `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

// OK builds a successful response carrying data.
func OK(data any) Response { return Response{Success: true, Data: data} }

// Fail builds a failed response from err, preserving its kind.
func Fail(err error) Response {
	if err == nil {
		return Response{Success: false, ErrorKind: KindInternal, ErrorMessage: "unknown error"}
	}
	return Response{Success: false, ErrorKind: KindOf(err), ErrorMessage: err.Error()}
}

// Err reconstructs an error from a failed response, or nil for a success.
func (r Response) Err() error {
	if r.Success {
		return nil
	}
	kind := r.ErrorKind
	if kind == "" {
		kind = KindInternal
	}
	return NewError(kind, "%s", r.ErrorMessage)
}

// ResponsePayload wraps a Response for transport back through the router.
type ResponsePayload struct {
	Response Response `json:"response"`
}

// Action implements Payload.
func (ResponsePayload) Action() string { return ActionRespond }

// NewResponseEnvelope builds the reply to a request envelope, addressed back
// to the request's sender and correlated with the original exchange.
func NewResponseEnvelope(req Envelope, resp Response) Envelope {
	env := NewEnvelope(req.Recipient, req.Sender, ActionRespond, ResponsePayload{Response: resp})
	return env.WithCorrelation(req.CorrelationID)
}

// NewID generates a unique identifier for envelopes, correlations and
// registered policies.
func NewID() string { return uuid.NewString() }
