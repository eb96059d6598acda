// Package instrumentation provides OpenTelemetry instrumentation for the
// calendar assistant MCP server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_requests_duration_seconds: Histogram of HTTP request durations
//
// Calendar API Metrics:
//   - calendar_api_operations_total: Counter of Calendar API calls by operation and status
//   - calendar_api_operations_duration_seconds: Histogram of Calendar API call durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_invocations_duration_seconds: Histogram of tool execution durations
//
// With the Prometheus exporter the metrics live in a registry owned by the
// Provider, next to the Go runtime and process collectors, and are served
// by Provider.PrometheusHandler.
//
// Calendar IDs never appear as label values. With METRICS_DETAILED_LABELS
// set, tool metrics carry a "calendar" label reduced to primary/secondary.
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and Calendar API
// calls (google.calendar.<operation>).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calendar-assistant)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_ARGUMENTS
//
// Exporters that write locally use stderr, since stdout carries the MCP
// stdio transport.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "list_events", instrumentation.StatusSuccess, "primary", d)
package instrumentation
