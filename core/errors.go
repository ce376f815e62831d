package core

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable error classification. Kinds are part of
// the public contract: callers branch on them, log pipelines index them, and
// they never carry internal state.
type Kind string

const (
	// KindPolicyNotFound indicates a lookup for an unregistered policy or
	// schema version.
	KindPolicyNotFound Kind = "policy_not_found"
	// KindInvalidRuleDefinition indicates a structurally malformed RuleSet.
	KindInvalidRuleDefinition Kind = "invalid_rule_definition"
	// KindAgentNotFound indicates routing to an unregistered recipient.
	KindAgentNotFound Kind = "agent_not_found"
	// KindMailboxFull indicates the recipient's bounded mailbox is saturated.
	KindMailboxFull Kind = "mailbox_full"
	// KindAgentUnavailable indicates a transient condition (agent draining,
	// stopped, or otherwise not accepting work right now).
	KindAgentUnavailable Kind = "agent_unavailable"
	// KindStepTimeout indicates a workflow step exceeded its response deadline.
	KindStepTimeout Kind = "step_timeout"
	// KindSchemaIncompatible indicates breaking schema drift blocking an
	// automatic deployment.
	KindSchemaIncompatible Kind = "schema_incompatible"
	// KindToolNotFound indicates a tool-style call for an unregistered tool.
	KindToolNotFound Kind = "tool_not_found"
	// KindInvalidParameters indicates malformed or missing call parameters,
	// including envelope payloads that do not match their declared action.
	KindInvalidParameters Kind = "invalid_parameters"
	// KindWriteConflict indicates a concurrent registration lost the race for
	// the same id; the first committed write wins.
	KindWriteConflict Kind = "write_conflict"
	// KindInternal covers unexpected failures surfaced at a boundary.
	KindInternal Kind = "internal"
)

// Error is the framework error type. It pairs a stable Kind with a
// human-readable message and optionally wraps an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates an Error with the given kind and formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps err with a kind and context message. A nil err yields nil.
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed. Errors outside the
// taxonomy report KindInternal; nil reports the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// Transient reports whether err represents a condition worth retrying:
// saturated mailboxes, unavailable agents and step timeouts. Everything else
// is terminal for the attempting caller.
func Transient(err error) bool {
	switch KindOf(err) {
	case KindMailboxFull, KindAgentUnavailable, KindStepTimeout:
		return true
	default:
		return false
	}
}
