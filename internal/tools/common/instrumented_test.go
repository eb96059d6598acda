package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/calendar-assistant/internal/instrumentation"
	"github.com/teemow/calendar-assistant/internal/server"
)

type testEnv struct {
	sc     *server.ServerContext
	reader *sdkmetric.ManualReader
	spans  *tracetest.SpanRecorder
	audit  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, true)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	spans := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	audit := &bytes.Buffer{}
	sc := server.NewServerContext(context.Background(), nil)
	sc.SetMetrics(metrics)
	sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(
		slog.New(slog.NewJSONHandler(audit, nil)),
		instrumentation.AuditLoggingConfig{Enabled: true, IncludeArguments: true},
	))
	t.Cleanup(func() { _ = sc.Shutdown() })

	return &testEnv{sc: sc, reader: reader, spans: spans, audit: audit}
}

func (e *testEnv) auditRecord(t *testing.T) map[string]any {
	t.Helper()
	var record map[string]any
	if err := json.Unmarshal(e.audit.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode audit record %q: %v", e.audit.String(), err)
	}
	return record
}

func (e *testEnv) toolStatuses(t *testing.T) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := e.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	statuses := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			sum := m.Data.(metricdata.Sum[int64])
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value("status")
				statuses[status.AsString()] += dp.Value
			}
		}
	}
	return statuses
}

func newRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = "test_tool"
	req.Params.Arguments = args
	return req
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	env := newTestEnv(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("test_tool", instrumentation.ServiceCalendar,
		instrumentation.OperationDelete, env.sc, handler)
	result, err := wrapped(context.Background(), newRequest(map[string]any{
		ArgCalendarID: "primary",
		ArgEventID:    "evt-1",
	}))

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}

	record := env.auditRecord(t)
	if record["msg"] != "tool_executed" {
		t.Errorf("audit msg = %v, want tool_executed", record["msg"])
	}
	if record["event_id"] != "evt-1" {
		t.Errorf("audit event_id = %v, want evt-1", record["event_id"])
	}
	if record["invocation_id"] == "" || record["invocation_id"] == nil {
		t.Error("expected an invocation_id in the audit record")
	}
	if record["trace_id"] == "" || record["trace_id"] == nil {
		t.Error("expected a trace_id in the audit record")
	}

	if got := env.toolStatuses(t)[instrumentation.StatusSuccess]; got != 1 {
		t.Errorf("success invocations = %d, want 1", got)
	}

	ended := env.spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "tool.test_tool" {
		t.Errorf("span name = %q, want tool.test_tool", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", ended[0].Status().Code)
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	env := newTestEnv(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := InstrumentedToolHandlerWithService("test_tool", instrumentation.ServiceCalendar, instrumentation.OperationDelete, env.sc, handler)
	_, err := wrapped(context.Background(), newRequest(nil))

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}

	record := env.auditRecord(t)
	if record["msg"] != "tool_failed" {
		t.Errorf("audit msg = %v, want tool_failed", record["msg"])
	}
	if record["error"] != "test error" {
		t.Errorf("audit error = %v, want %q", record["error"], "test error")
	}
	if got := env.toolStatuses(t)[instrumentation.StatusError]; got != 1 {
		t.Errorf("error invocations = %d, want 1", got)
	}
	if code := env.spans.Ended()[0].Status().Code; code != codes.Error {
		t.Errorf("span status = %v, want Error", code)
	}
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	env := newTestEnv(t)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := mcp.NewToolResultText("❌ Failed to delete event abc123.")
		result.IsError = true
		return result, nil
	}

	wrapped := InstrumentedToolHandlerWithService("test_tool", instrumentation.ServiceCalendar, instrumentation.OperationDelete, env.sc, handler)
	result, err := wrapped(context.Background(), newRequest(map[string]any{ArgEventID: "abc123"}))

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected the error result to be returned unchanged")
	}
	if record := env.auditRecord(t); record["msg"] != "tool_failed" {
		t.Errorf("audit msg = %v, want tool_failed", record["msg"])
	}
	if got := env.toolStatuses(t)[instrumentation.StatusError]; got != 1 {
		t.Errorf("error invocations = %d, want 1", got)
	}
}

func TestInstrumentedToolHandler_NilServerContext(t *testing.T) {
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	result, err := InstrumentedToolHandlerWithService("test_tool", "", "", nil, handler)(context.Background(), newRequest(nil))
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestStringArg(t *testing.T) {
	args := map[string]any{"s": "value", "n": 3}

	if got := StringArg(args, "s"); got != "value" {
		t.Errorf("StringArg(s) = %q, want value", got)
	}
	if got := StringArg(args, "n"); got != "" {
		t.Errorf("StringArg(n) = %q, want empty", got)
	}
	if got := StringArg(nil, "s"); got != "" {
		t.Errorf("StringArg(nil) = %q, want empty", got)
	}
}
