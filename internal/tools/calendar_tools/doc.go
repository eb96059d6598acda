// Package calendar_tools exposes Google Calendar operations as MCP tools.
//
// The catalog is a closed set of Kinds, each with a ToolSchema describing
// its parameters. The Dispatcher validates the arguments of an invocation,
// calls the calendar service and renders the result as text:
//
//	d := calendar_tools.NewDispatcher(sc)
//	res, err := d.Invoke(ctx, "list_events", map[string]any{"max_results": 5})
//
// Input errors (unknown tool, missing argument, malformed timestamp, empty
// interval) are returned as errors. Provider failures are rendered as a
// negative message and flagged with Result.Failed.
package calendar_tools
