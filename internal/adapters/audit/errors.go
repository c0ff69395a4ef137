// Package audit ships finished journal records to the downstream audit
// service. It implements the journal sink port on top of an instrumented
// HTTP client with retry and circuit breaker protection.
package audit

import "errors"

// Client errors represent failures in the HTTP client layer.
// These are distinct from domain errors - they represent infrastructure failures
// that are translated to domain errors at the port boundary.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	// This indicates the audit service is unhealthy and requests are being blocked.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned after all retry attempts have been exhausted.
	// The original error is wrapped for context.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
