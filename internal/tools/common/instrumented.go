package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/calendar-assistant/internal/instrumentation"
	"github.com/teemow/calendar-assistant/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

var errToolResult = errors.New("tool reported a failed result")

// Argument keys that identify the calendar and event a tool touches.
const (
	ArgCalendarID = "calendar_id"
	ArgEventID    = "event_id"
)

// InstrumentedToolHandlerWithService wraps a tool handler with tracing,
// metrics and audit logging, recording the Google service and operation on
// the span and the audit record.
//
// A handler error and a result with IsError set both count as failures:
//   - mcp_tool_invocations_total{status="error"}
//   - a "tool_failed" audit record
//   - an error status on the tool span
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithService("my_tool", "calendar", "list", sc, handler))
func InstrumentedToolHandlerWithService(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	handler ToolHandler,
) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		calendarID := StringArg(args, ArgCalendarID)

		invocation := instrumentation.NewToolInvocation(toolName).
			WithCalendar(calendarID).
			WithEvent(StringArg(args, ArgEventID))
		if serviceName != "" {
			invocation.WithService(serviceName, operation)
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			attribute.String(instrumentation.SpanAttrInvocationID, invocation.InvocationID),
			attribute.String(instrumentation.SpanAttrService, serviceName),
			attribute.String(instrumentation.SpanAttrOperation, operation),
			attribute.String(instrumentation.SpanAttrCalendar, instrumentation.CalendarLabel(calendarID)),
		)
		invocation.WithSpanContext(ctx)

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
		case result != nil && result.IsError:
			invocation.Complete(false, nil)
		default:
			invocation.CompleteSuccess()
		}
		invocation.Duration = duration

		instrumentation.EndSpan(span, spanError(err, result))
		if sc != nil {
			sc.Metrics().RecordToolInvocation(ctx, toolName, invocation.Status(), calendarID, duration)
			sc.AuditLogger().LogToolInvocation(invocation)
		}

		return result, err
	}
}

// StringArg returns args[key] when it is a string, otherwise "".
func StringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func spanError(err error, result *mcp.CallToolResult) error {
	if err != nil {
		return err
	}
	if result != nil && result.IsError {
		return errToolResult
	}
	return nil
}
