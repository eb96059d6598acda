package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-assistant/internal/instrumentation"
	"github.com/teemow/calendar-assistant/internal/server"
	"github.com/teemow/calendar-assistant/internal/tools/common"
)

// RegisterCalendarTools registers the calendar tool catalog with the MCP server.
// In read-only mode the tools that modify the calendar are left out.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool, opts ...Option) *Dispatcher {
	d := NewDispatcher(sc, append([]Option{WithLogger(sc.Logger())}, opts...)...)

	for _, schema := range Catalog() {
		if readOnly && !schema.Kind.ReadOnly() {
			continue
		}
		kind := schema.Kind
		s.AddTool(schema.Tool(), common.InstrumentedToolHandlerWithService(
			kind.Name(),
			instrumentation.ServiceCalendar,
			kind.Operation(),
			sc,
			d.Handler(kind),
		))
	}

	return d
}

// Handler adapts the dispatcher to an mcp-go tool handler for kind.
// Structural failures are returned as errors; provider failures come back
// as text results with IsError set.
func (d *Dispatcher) Handler(kind Kind) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := d.InvokeKind(ctx, kind, request.GetArguments())
		if err != nil {
			return nil, err
		}
		result := mcp.NewToolResultText(res.Text)
		result.IsError = res.Failed
		return result, nil
	}
}
