package calendar_tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendar-assistant/internal/server"
)

func TestRegisterCalendarTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
		absent   []string
	}{
		{
			name: "all tools",
			want: []string{
				"list_events", "get_today_events", "create_event", "search_events",
				"delete_event", "update_event", "check_availability",
			},
		},
		{
			name:     "read-only",
			readOnly: true,
			want:     []string{"list_events", "get_today_events", "search_events", "check_availability"},
			absent:   []string{"create_event", "delete_event", "update_event"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithToolCapabilities(true))
			sc := server.NewServerContextWithService(context.Background(), &fakeService{})

			d := RegisterCalendarTools(s, sc, tt.readOnly)
			require.NotNil(t, d)

			tools := s.ListTools()
			assert.Len(t, tools, len(tt.want))
			for _, name := range tt.want {
				assert.Contains(t, tools, name)
			}
			for _, name := range tt.absent {
				assert.NotContains(t, tools, name)
			}
		})
	}
}

func TestDispatcher_Handler(t *testing.T) {
	newRequest := func(args map[string]any) mcp.CallToolRequest {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = args
		return req
	}

	t.Run("success", func(t *testing.T) {
		d := newTestDispatcher(&fakeService{})

		result, err := d.Handler(KindDeleteEvent)(context.Background(), newRequest(map[string]any{"event_id": "abc123"}))
		require.NoError(t, err)
		require.Len(t, result.Content, 1)
		text, ok := result.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, "✅ Event abc123 deleted successfully.", text.Text)
		assert.False(t, result.IsError)
	})

	t.Run("provider failure", func(t *testing.T) {
		d := newTestDispatcher(&fakeService{err: errProvider})

		result, err := d.Handler(KindDeleteEvent)(context.Background(), newRequest(map[string]any{"event_id": "abc123"}))
		require.NoError(t, err)
		text, ok := result.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, "❌ Failed to delete event abc123.", text.Text)
		assert.True(t, result.IsError)
	})

	t.Run("structural failure", func(t *testing.T) {
		d := newTestDispatcher(&fakeService{})

		result, err := d.Handler(KindDeleteEvent)(context.Background(), newRequest(nil))
		assert.ErrorIs(t, err, ErrMissingArgument)
		assert.Nil(t, result)
	})
}
