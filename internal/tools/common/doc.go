// Package common provides helpers shared by the MCP tool packages, most
// notably the instrumentation wrapper every registered tool goes through.
package common
