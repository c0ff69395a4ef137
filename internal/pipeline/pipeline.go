// Package pipeline maps a processing-stage execution context to the single
// view that keys per-request shared state.
//
// Each supported stage kind carries its request state on a different object:
// HTTP stages on the request (run through the identity resolver), event
// stages on the payload itself, RPC stages on the call's context object, and
// resolver stages on the conventional third positional argument. StoreKey is
// the one place that knows this mapping; everything downstream just uses the
// returned key with an identity.Store.
//
// Unsupported kinds are a loud signal: StoreKey returns ErrUnsupportedKind
// rather than silently handing back a key nothing else will ever match. Code
// that must keep going anyway can use IsolatedKey, which is explicit about
// producing a key with no sharing semantics.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/viewident/viewident/internal/identity"
)

// Kind discriminates the supported pipeline stage kinds.
type Kind uint8

const (
	// KindUnknown is the zero value; it is never supported.
	KindUnknown Kind = iota

	// KindHTTP is an HTTP middleware/handler stage.
	KindHTTP

	// KindEvent is a messaging or event-driven stage.
	KindEvent

	// KindRPC is a remote-call stage.
	KindRPC

	// KindResolver is a query/resolver stage where shared context travels as
	// the third positional argument.
	KindResolver
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindEvent:
		return "event"
	case KindRPC:
		return "rpc"
	case KindResolver:
		return "resolver"
	default:
		return "unknown"
	}
}

// ErrUnsupportedKind is returned by StoreKey for stage kinds outside the
// supported set. Callers should treat it as "no identity sharing here", not
// as a fatal condition.
var ErrUnsupportedKind = errors.New("unsupported pipeline stage kind")

// Execution is the minimal contract a stage context must satisfy.
type Execution interface {
	// StageKind reports which pipeline stage kind this execution represents.
	StageKind() Kind
}

// HTTPExecution exposes the request object of an HTTP stage.
type HTTPExecution interface {
	Execution

	// HTTPRequest returns the request view for this stage. It is passed
	// through the identity resolver before use as a key.
	HTTPRequest() any
}

// EventExecution exposes the payload of an event stage.
type EventExecution interface {
	Execution

	// EventPayload returns the event payload, used directly as the key.
	EventPayload() any
}

// RPCExecution exposes the call context of an RPC stage.
type RPCExecution interface {
	Execution

	// CallContext returns the per-call context object, used directly as the key.
	CallContext() any
}

// ResolverExecution exposes the positional arguments of a resolver stage.
type ResolverExecution interface {
	Execution

	// ResolverArgs returns the resolver invocation arguments. By convention
	// the third one carries the shared context.
	ResolverArgs() []any
}

// StoreKey extracts the single view to use as the shared-state key for an
// execution. HTTP requests are canonicalized through res; other kinds use
// their designated object directly. An execution whose kind and interface
// shape disagree, or whose kind is unsupported, yields an error.
func StoreKey(exec Execution, res *identity.Resolver) (any, error) {
	if exec == nil {
		return nil, fmt.Errorf("%w: nil execution", ErrUnsupportedKind)
	}

	switch kind := exec.StageKind(); kind {
	case KindHTTP:
		h, ok := exec.(HTTPExecution)
		if !ok {
			return nil, fmt.Errorf("%w: %s execution without request accessor", ErrUnsupportedKind, kind)
		}

		return res.Resolve(h.HTTPRequest()), nil

	case KindEvent:
		e, ok := exec.(EventExecution)
		if !ok {
			return nil, fmt.Errorf("%w: %s execution without payload accessor", ErrUnsupportedKind, kind)
		}

		return e.EventPayload(), nil

	case KindRPC:
		r, ok := exec.(RPCExecution)
		if !ok {
			return nil, fmt.Errorf("%w: %s execution without call context accessor", ErrUnsupportedKind, kind)
		}

		return r.CallContext(), nil

	case KindResolver:
		r, ok := exec.(ResolverExecution)
		if !ok {
			return nil, fmt.Errorf("%w: %s execution without argument accessor", ErrUnsupportedKind, kind)
		}

		args := r.ResolverArgs()
		if len(args) < 3 {
			return nil, fmt.Errorf("%w: %s execution carries %d arguments, need 3", ErrUnsupportedKind, kind, len(args))
		}

		return args[2], nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

// isolated is deliberately non-zero-sized: pointers to distinct zero-sized
// allocations are not guaranteed to be distinct in Go.
type isolated struct {
	_ byte
}

// IsolatedKey returns a key that is fresh on every call and therefore never
// shared with any other stage. It exists for callers that must proceed after
// ErrUnsupportedKind; state stored under it is reachable only through this
// exact return value.
func IsolatedKey() any {
	return new(isolated)
}
