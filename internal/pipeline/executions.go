package pipeline

// Concrete execution adapters for each supported stage kind. Adapters
// (the HTTP scope middleware, an event consumer, an RPC interceptor) build
// these around their native context objects before asking for a store key.

type httpExecution struct {
	request any
}

// HTTP wraps a request view as an HTTP-stage execution.
func HTTP(request any) Execution {
	return httpExecution{request: request}
}

func (e httpExecution) StageKind() Kind { return KindHTTP }
func (e httpExecution) HTTPRequest() any { return e.request }

type eventExecution struct {
	payload any
}

// Event wraps an event payload as an event-stage execution.
func Event(payload any) Execution {
	return eventExecution{payload: payload}
}

func (e eventExecution) StageKind() Kind { return KindEvent }
func (e eventExecution) EventPayload() any { return e.payload }

type rpcExecution struct {
	callCtx any
}

// RPC wraps a per-call context object as an RPC-stage execution.
func RPC(callCtx any) Execution {
	return rpcExecution{callCtx: callCtx}
}

func (e rpcExecution) StageKind() Kind { return KindRPC }
func (e rpcExecution) CallContext() any { return e.callCtx }

type resolverExecution struct {
	args []any
}

// ResolverCall wraps resolver invocation arguments as a resolver-stage
// execution. The third argument conventionally carries the shared context.
func ResolverCall(args ...any) Execution {
	return resolverExecution{args: args}
}

func (e resolverExecution) StageKind() Kind { return KindResolver }
func (e resolverExecution) ResolverArgs() []any { return e.args }

// unknownExecution backs Unknown; it intentionally implements none of the
// kind-specific accessors.
type unknownExecution struct{}

// Unknown returns an execution of an unsupported kind, useful for exercising
// failure paths in callers.
func Unknown() Execution {
	return unknownExecution{}
}

func (unknownExecution) StageKind() Kind { return KindUnknown }
