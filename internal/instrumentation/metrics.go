package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrTool      = "tool"
	attrCalendar  = "calendar"
)

var (
	httpBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}
	// Calendar calls and the tools wrapping them are bounded by the
	// request timeout, 30s by default.
	callBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
)

// counted is a counter and a duration histogram recorded together.
type counted struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

// newCounted creates "<name>_total" and "<name>_duration_seconds".
func newCounted(meter metric.Meter, name, what, unit string, buckets []float64) (counted, error) {
	var c counted
	var err error

	c.total, err = meter.Int64Counter(
		name+"_total",
		metric.WithDescription("Total number of "+what),
		metric.WithUnit(unit),
	)
	if err != nil {
		return c, fmt.Errorf("failed to create %s_total counter: %w", name, err)
	}

	c.duration, err = meter.Float64Histogram(
		name+"_duration_seconds",
		metric.WithDescription("Duration of "+what+" in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return c, fmt.Errorf("failed to create %s_duration_seconds histogram: %w", name, err)
	}
	return c, nil
}

func (c counted) record(ctx context.Context, d time.Duration, kv ...attribute.KeyValue) {
	if c.total == nil || c.duration == nil {
		return
	}
	attrs := metric.WithAttributes(kv...)
	c.total.Add(ctx, 1, attrs)
	c.duration.Record(ctx, d.Seconds(), attrs)
}

// Metrics records the server's metrics. The zero value is a valid no-op
// recorder, which is what a disabled Provider hands out.
//
//   - http_requests_total, http_requests_duration_seconds
//   - calendar_api_operations_total, calendar_api_operations_duration_seconds
//   - mcp_tool_invocations_total, mcp_tool_invocations_duration_seconds
type Metrics struct {
	http  counted
	api   counted
	tools counted

	detailedLabels bool
}

// NewMetrics creates all instruments on the given meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error
	if m.http, err = newCounted(meter, "http_requests", "HTTP requests", "{request}", httpBuckets); err != nil {
		return nil, err
	}
	if m.api, err = newCounted(meter, "calendar_api_operations", "Google Calendar API operations", "{operation}", callBuckets); err != nil {
		return nil, err
	}
	if m.tools, err = newCounted(meter, "mcp_tool_invocations", "MCP tool invocations", "{invocation}", callBuckets); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.http.record(ctx, duration,
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
}

// RecordCalendarAPIOperation records one call against the Calendar API.
//
//   - operation: one of the Operation* constants
//   - status: StatusSuccess or StatusError
func (m *Metrics) RecordCalendarAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.api.record(ctx, duration,
		attribute.String(attrService, ServiceCalendar),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
}

// RecordToolInvocation records an MCP tool invocation.
// With detailed labels enabled the calendar is added, reduced by CalendarLabel.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status, calendarID string, duration time.Duration) {
	if m == nil {
		return
	}

	kv := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels {
		kv = append(kv, attribute.String(attrCalendar, CalendarLabel(calendarID)))
	}
	m.tools.record(ctx, duration, kv...)
}
