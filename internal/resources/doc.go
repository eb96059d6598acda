// Package resources provides MCP resources for the calendar server.
// Resources are read-only data that MCP clients can fetch without a tool
// call: the effective server settings and a rendering of today's agenda.
package resources
