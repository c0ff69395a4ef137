// Package domain contains core business entities and rules.
package domain

import (
	"sync"
	"time"
)

// Entry is the per-request journal record shared across pipeline stages.
// It is a domain entity - it has no knowledge of external systems.
// All methods are safe for concurrent use.
type Entry struct {
	// RequestID is the unique identifier assigned to the request.
	RequestID string

	// CorrelationID links this request to an upstream trace of work.
	CorrelationID string

	// Method is the transport method or operation name, such as "GET".
	Method string

	// Path is the request path or operation target.
	Path string

	// Started is when the request entered the pipeline.
	Started time.Time

	mu          sync.RWMutex
	status      int
	finished    time.Time
	annotations map[string]any
}

// NewEntry creates a journal entry for a request entering the pipeline.
func NewEntry(requestID, correlationID, method, path string) *Entry {
	return &Entry{
		RequestID:     requestID,
		CorrelationID: correlationID,
		Method:        method,
		Path:          path,
		Started:       time.Now(),
		annotations:   make(map[string]any),
	}
}

// Annotate records a key/value pair on the entry. Later writes to the
// same key overwrite earlier ones.
func (e *Entry) Annotate(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.annotations[key] = value
}

// Annotation returns the value recorded under key, if any.
func (e *Entry) Annotation(key string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.annotations[key]

	return v, ok
}

// GetOrCompute returns the value recorded under key, computing and
// recording it first if absent. The compute function runs under the
// entry lock, so concurrent callers observe a single computation.
func (e *Entry) GetOrCompute(key string, compute func() any) any {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.annotations[key]; ok {
		return v
	}

	v := compute()
	e.annotations[key] = v

	return v
}

// SetStatus records the final status code for the request.
func (e *Entry) SetStatus(status int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status = status
}

// Status returns the recorded status code, or zero if none was set.
func (e *Entry) Status() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.status
}

// MarkFinished stamps the entry with its completion time. Subsequent
// calls keep the first timestamp.
func (e *Entry) MarkFinished() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished.IsZero() {
		e.finished = time.Now()
	}
}

// Finished reports the completion time and whether the entry is done.
func (e *Entry) Finished() (time.Time, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.finished, !e.finished.IsZero()
}

// Annotations returns a copy of all recorded annotations.
func (e *Entry) Annotations() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]any, len(e.annotations))
	for k, v := range e.annotations {
		out[k] = v
	}

	return out
}
