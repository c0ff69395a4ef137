// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate use cases (business workflows)
//   - Coordinate between domain and infrastructure
//   - Handle cross-cutting concerns (logging)
//   - Enforce business rules that span multiple entities
//
// What does NOT belong here:
//   - HTTP/gRPC specifics (that's adapters)
//   - Database queries (that's repository adapters)
//   - Core domain logic (that's the domain layer)
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/viewident/viewident/internal/domain"
	"github.com/viewident/viewident/internal/identity"
	"github.com/viewident/viewident/internal/pipeline"
	"github.com/viewident/viewident/internal/platform/logging"
	"github.com/viewident/viewident/internal/ports"
)

// shipFlag gates whether finished entries are published to sinks.
const shipFlag = "journal-ship"

// maxSinkConcurrency bounds the fan-out when publishing to sinks.
const maxSinkConcurrency = 4

// Journal keys per-request entries by canonical request identity, so
// every pipeline stage reaches the same entry no matter which view of
// the request it holds.
//
// Example usage:
//
//	// In main.go or wire setup
//	journal := app.NewJournal(&app.JournalConfig{
//	    Sinks:  []ports.JournalSink{auditClient},
//	    Flags:  flags,
//	    Logger: logger,
//	})
//
//	// In middleware
//	entry := journal.Begin(req, requestID, correlationID, req.Method, req.URL.Path)
//
//	// In a later stage holding a different view of the same request
//	journal.Annotate(wrappedReq, "user", claims.Subject)
type Journal struct {
	resolver *identity.Resolver
	entries  *identity.Store
	sinks    []ports.JournalSink
	flags    ports.FeatureFlags

	sinkTimeout time.Duration

	logger *slog.Logger
}

// JournalConfig holds the journal's dependencies.
type JournalConfig struct {
	Sinks []ports.JournalSink
	Flags ports.FeatureFlags

	// SinkTimeout bounds each publish fan-out. Zero means no bound
	// beyond the caller's context.
	SinkTimeout time.Duration

	Logger *slog.Logger
}

// NewJournal creates a journal with its own resolver and entry store.
func NewJournal(cfg *JournalConfig) *Journal {
	logger := slog.Default()

	j := &Journal{
		resolver: identity.NewResolver(),
		entries:  identity.NewStore("journal.entries"),
		logger:   logger.With(slog.String("component", "app.Journal")),
	}

	if cfg != nil {
		j.sinks = cfg.Sinks
		j.flags = cfg.Flags
		j.sinkTimeout = cfg.SinkTimeout

		if cfg.Logger != nil {
			j.logger = cfg.Logger.With(slog.String("component", "app.Journal"))
		}
	}

	return j
}

// Resolver exposes the journal's identity resolver so adapters can
// register related views of the same request.
func (j *Journal) Resolver() *identity.Resolver {
	return j.resolver
}

// Begin creates and stores an entry for the request the view belongs
// to, returning it. A nil or non-reference view yields no entry.
func (j *Journal) Begin(view any, requestID, correlationID, method, path string) *domain.Entry {
	key := j.resolver.Resolve(view)
	if key == nil {
		return nil
	}

	entry := domain.NewEntry(requestID, correlationID, method, path)
	j.entries.Set(key, entry)

	return entry
}

// For returns the entry for the request the view belongs to, or nil
// when none was begun. Any view of the request reaches the same entry.
func (j *Journal) For(view any) *domain.Entry {
	v, ok := j.entries.Get(j.resolver.Resolve(view))
	if !ok {
		return nil
	}

	entry, ok := v.(*domain.Entry)
	if !ok {
		return nil
	}

	return entry
}

// ForExecution returns the entry for a pipeline execution, locating
// the request view by the execution's stage kind.
func (j *Journal) ForExecution(exec pipeline.Execution) (*domain.Entry, error) {
	key, err := pipeline.StoreKey(exec, j.resolver)
	if err != nil {
		return nil, fmt.Errorf("locating request view: %w", err)
	}

	return j.For(key), nil
}

// Annotate records a key/value pair on the view's entry. It is a no-op
// when the view has no entry.
func (j *Journal) Annotate(view any, key string, value any) {
	entry := j.For(view)
	if entry == nil {
		return
	}

	entry.Annotate(key, value)
}

// Snapshot reports the view's entry as a publishable record.
func (j *Journal) Snapshot(view any) (ports.JournalRecord, bool) {
	entry := j.For(view)
	if entry == nil {
		return ports.JournalRecord{}, false
	}

	return recordOf(entry), true
}

// Finish closes the view's entry, publishes it to the configured sinks
// and releases the request's identity state. Publishing is best effort:
// each sink is attempted and failures are joined into the returned
// error. A view without an entry is a no-op.
func (j *Journal) Finish(ctx context.Context, view any, status int) error {
	entry := j.For(view)
	if entry == nil {
		return nil
	}

	entry.SetStatus(status)
	entry.MarkFinished()

	record := recordOf(entry)

	j.entries.Delete(j.resolver.Resolve(view))
	j.resolver.Forget(view)

	if !j.shipEnabled(ctx) {
		return nil
	}

	return j.publish(ctx, record)
}

func (j *Journal) shipEnabled(ctx context.Context) bool {
	if j.flags == nil {
		return len(j.sinks) > 0
	}

	return j.flags.IsEnabled(ctx, shipFlag, true)
}

// publish fans the record out to every sink, collecting failures
// instead of stopping at the first one.
func (j *Journal) publish(ctx context.Context, record ports.JournalRecord) error {
	if j.sinkTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, j.sinkTimeout)
		defer cancel()
	}

	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = j.logger
	}

	fns := make([]func(context.Context) (struct{}, error), len(j.sinks))
	for i, sink := range j.sinks {
		fns[i] = func(ctx context.Context) (struct{}, error) {
			return struct{}{}, sink.Publish(ctx, record)
		}
	}

	results := ParallelPartialLimit(ctx, maxSinkConcurrency, fns...)

	var errs []error

	for i, r := range results {
		if r.Err != nil {
			logger.WarnContext(ctx, "journal sink publish failed",
				slog.Int("sink", i),
				slog.String("request_id", record.RequestID),
				slog.Any("error", r.Err))
			errs = append(errs, fmt.Errorf("sink %d: %w", i, r.Err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("publishing journal record: %w", errors.Join(errs...))
	}

	return nil
}

func recordOf(entry *domain.Entry) ports.JournalRecord {
	finished, _ := entry.Finished()

	return ports.JournalRecord{
		RequestID:     entry.RequestID,
		CorrelationID: entry.CorrelationID,
		Method:        entry.Method,
		Path:          entry.Path,
		Status:        entry.Status(),
		Annotations:   entry.Annotations(),
		Started:       entry.Started,
		Finished:      finished,
	}
}
