package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendar-assistant/internal/calendar"
	"github.com/teemow/calendar-assistant/internal/server"
	"github.com/teemow/calendar-assistant/internal/tools/calendar_tools"
)

// todayService answers TodayEvents and fails everything else.
type todayService struct {
	events []calendar.Event
	err    error
}

var errUnused = errors.New("not used")

func (s *todayService) TodayEvents(context.Context, string) ([]calendar.Event, error) {
	return s.events, s.err
}

func (s *todayService) ListEvents(context.Context, calendar.ListOptions) ([]calendar.Event, error) {
	return nil, errUnused
}

func (s *todayService) CreateEvent(context.Context, string, calendar.EventInput) (*calendar.Event, error) {
	return nil, errUnused
}

func (s *todayService) UpdateEvent(context.Context, string, string, calendar.EventPatch) (*calendar.Event, error) {
	return nil, errUnused
}

func (s *todayService) DeleteEvent(context.Context, string, string) error {
	return errUnused
}

func (s *todayService) SearchEvents(context.Context, string, string, int) ([]calendar.Event, error) {
	return nil, errUnused
}

func (s *todayService) FreeBusy(context.Context, time.Time, time.Time, []string) (*calendar.FreeBusyResult, error) {
	return nil, errUnused
}

func newReadRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestNewSettings(t *testing.T) {
	all := NewSettings("google-calendar-assistant", "1.0.0", "primary", "UTC", false)
	assert.Len(t, all.Tools, len(calendar_tools.Kinds()))

	readOnly := NewSettings("google-calendar-assistant", "1.0.0", "primary", "UTC", true)
	assert.Equal(t, []string{"list_events", "get_today_events", "search_events", "check_availability"}, readOnly.Tools)
	assert.True(t, readOnly.ReadOnly)
}

func TestHandleSettings(t *testing.T) {
	settings := NewSettings("google-calendar-assistant", "1.0.0", "team@example.com", "Europe/Berlin", true)

	contents, err := handleSettings(newReadRequest(SettingsURI), settings)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SettingsURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var got Settings
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, settings, got)
}

func TestHandleToday(t *testing.T) {
	t.Run("events", func(t *testing.T) {
		svc := &todayService{events: []calendar.Event{{
			ID:      "evt1",
			Summary: "Standup",
			Start:   calendar.EventTime{DateTime: "2024-01-15T10:00:00Z"},
			End:     calendar.EventTime{DateTime: "2024-01-15T10:15:00Z"},
		}}}
		d := calendar_tools.NewDispatcher(server.NewServerContextWithService(context.Background(), svc))

		contents, err := handleToday(context.Background(), newReadRequest(TodayURI), d)
		require.NoError(t, err)
		require.Len(t, contents, 1)

		text, ok := contents[0].(*mcp.TextResourceContents)
		require.True(t, ok)
		assert.Equal(t, "text/plain", text.MIMEType)
		assert.Contains(t, text.Text, "Standup")
		assert.Contains(t, text.Text, "evt1")
	})

	t.Run("provider failure", func(t *testing.T) {
		svc := &todayService{err: errors.New("backend error")}
		d := calendar_tools.NewDispatcher(server.NewServerContextWithService(context.Background(), svc))

		contents, err := handleToday(context.Background(), newReadRequest(TodayURI), d)
		assert.Error(t, err)
		assert.Nil(t, contents)
	})
}

func TestRegisterCalendarResources(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithResourceCapabilities(false, false))
	d := calendar_tools.NewDispatcher(server.NewServerContextWithService(context.Background(), &todayService{}))

	RegisterCalendarResources(s, d, NewSettings("test", "0.0.1", "primary", "UTC", false))

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), SettingsURI)
	assert.Contains(t, string(raw), TodayURI)
}
