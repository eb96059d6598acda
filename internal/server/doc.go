// Package server holds the runtime pieces shared by the MCP transports.
//
// ServerContext owns the calendar client. The client is built lazily by a
// ServiceFactory on the first tool call and reused afterwards; a failed
// build is retried on the next call so an expired token can be fixed
// without a restart.
//
// HTTPServer mounts the streamable HTTP transport at /mcp next to the
// health endpoints:
//   - /healthz: liveness
//   - /readyz: readiness, including a calendar client check
//   - /healthz/detailed: uptime and version
//
// MetricsServer exposes Prometheus metrics on a separate listener.
package server
