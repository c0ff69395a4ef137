package telemetry

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/viewident/viewident/telemetry"
)

// Metrics holds HTTP server metrics.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server metrics.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

// JournalMetrics holds metrics for the request journal lifecycle.
type JournalMetrics struct {
	activeEntries    metric.Int64UpDownCounter
	recordsPublished metric.Int64Counter
	publishFailures  metric.Int64Counter
}

// NewJournalMetrics creates journal lifecycle metrics.
func NewJournalMetrics() (*JournalMetrics, error) {
	meter := otel.Meter(instrumentationName)

	activeEntries, err := meter.Int64UpDownCounter(
		"journal.entries.active",
		metric.WithDescription("Number of journal entries currently open"),
	)
	if err != nil {
		return nil, err
	}

	recordsPublished, err := meter.Int64Counter(
		"journal.records.published",
		metric.WithDescription("Total journal records published to sinks"),
	)
	if err != nil {
		return nil, err
	}

	publishFailures, err := meter.Int64Counter(
		"journal.records.publish_failures",
		metric.WithDescription("Total journal records that failed to publish"),
	)
	if err != nil {
		return nil, err
	}

	return &JournalMetrics{
		activeEntries:    activeEntries,
		recordsPublished: recordsPublished,
		publishFailures:  publishFailures,
	}, nil
}

// EntryOpened records a journal entry entering the pipeline.
func (m *JournalMetrics) EntryOpened(ctx context.Context) {
	if m == nil {
		return
	}

	m.activeEntries.Add(ctx, 1)
}

// EntryClosed records a journal entry leaving the pipeline. An error
// from publishing counts as a failure.
func (m *JournalMetrics) EntryClosed(ctx context.Context, publishErr error) {
	if m == nil {
		return
	}

	m.activeEntries.Add(ctx, -1)

	if publishErr != nil {
		m.publishFailures.Add(ctx, 1)

		return
	}

	m.recordsPublished.Add(ctx, 1)
}

// Middleware returns Gin middleware for OpenTelemetry tracing and metrics.
// Uses otelgin for tracing and adds custom metrics and X-Trace-ID header.
func Middleware(serviceName string) gin.HandlerFunc {
	// Create metrics - errors are logged but don't prevent the middleware from working
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		start := time.Now()

		// Record active request
		if metrics != nil {
			attrs := []attribute.KeyValue{
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
			}

			metrics.activeRequests.Add(c.Request.Context(), 1, metric.WithAttributes(attrs...))
			defer metrics.activeRequests.Add(c.Request.Context(), -1, metric.WithAttributes(attrs...))
		}

		// Process request
		c.Next()

		// Get trace ID from span and add to response header
		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().HasTraceID() {
			c.Header("X-Trace-ID", span.SpanContext().TraceID().String())
		}

		// Record metrics
		if metrics != nil {
			duration := time.Since(start).Seconds()
			attrs := []attribute.KeyValue{
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
				attribute.Int("http.status_code", c.Writer.Status()),
			}
			metrics.requestDuration.Record(c.Request.Context(), duration, metric.WithAttributes(attrs...))
			metrics.requestTotal.Add(c.Request.Context(), 1, metric.WithAttributes(attrs...))
		}
	}
}

// TracingMiddleware returns just the otelgin tracing middleware.
// Use this if you want tracing without custom metrics.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
