// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"
	"time"
)

// JournalRecord is the completed, serializable form of one request's shared
// state: everything the pipeline stages annotated, plus timing and outcome.
type JournalRecord struct {
	// RequestID is the per-request identifier assigned at ingress.
	RequestID string `json:"requestId"`

	// CorrelationID tracks the business transaction across services.
	CorrelationID string `json:"correlationId,omitempty"`

	// Method and Path describe the request line.
	Method string `json:"method"`
	Path   string `json:"path"`

	// Status is the final HTTP status code, zero if the request never
	// produced a response.
	Status int `json:"status,omitempty"`

	// Annotations is the state accumulated across pipeline stages.
	Annotations map[string]any `json:"annotations,omitempty"`

	// Started and Finished bound the request's processing window.
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished,omitempty"`
}

// JournalSink receives completed journal records. Implementations may ship
// them to a downstream audit service, a message bus, or a log.
type JournalSink interface {
	// Publish delivers one completed record. Implementations should respect
	// context deadlines and return domain.ErrUnavailable when the destination
	// is unreachable.
	Publish(ctx context.Context, record JournalRecord) error
}

// JournalSinkFunc adapts a function to the JournalSink interface.
type JournalSinkFunc func(ctx context.Context, record JournalRecord) error

// Publish implements JournalSink.
func (f JournalSinkFunc) Publish(ctx context.Context, record JournalRecord) error {
	return f(ctx, record)
}
