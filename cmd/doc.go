// Package cmd implements the command-line interface for calendar-assistant.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the Google Calendar tools
//   - auth: Authorize access to Google Calendar and store the token
//   - verify: Check credentials, token and the local inference runtime
//   - call: Invoke a single tool from the shell
//   - export: Write upcoming events as an iCalendar file
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
