package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-assistant/internal/tools/calendar_tools"
)

// Resource URIs.
const (
	SettingsURI = "calendar://settings"
	TodayURI    = "calendar://today"
)

// Settings describes the server configuration exposed to clients.
type Settings struct {
	Server          string   `json:"server"`
	Version         string   `json:"version"`
	DefaultCalendar string   `json:"default_calendar"`
	TimeZone        string   `json:"timezone"`
	ReadOnly        bool     `json:"read_only"`
	Tools           []string `json:"tools"`
}

// NewSettings fills Tools with the tools registered in the given mode.
func NewSettings(server, version, defaultCalendar, timeZone string, readOnly bool) Settings {
	var tools []string
	for _, kind := range calendar_tools.Kinds() {
		if readOnly && !kind.ReadOnly() {
			continue
		}
		tools = append(tools, kind.Name())
	}
	return Settings{
		Server:          server,
		Version:         version,
		DefaultCalendar: defaultCalendar,
		TimeZone:        timeZone,
		ReadOnly:        readOnly,
		Tools:           tools,
	}
}

// RegisterCalendarResources registers the settings and today resources.
func RegisterCalendarResources(s *mcpserver.MCPServer, d *calendar_tools.Dispatcher, settings Settings) {
	settingsResource := mcp.NewResource(
		SettingsURI,
		"Calendar Server Settings",
		mcp.WithResourceDescription("Default calendar, time zone and the tools this server exposes"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(request, settings)
	})

	todayResource := mcp.NewResource(
		TodayURI,
		"Today's Events",
		mcp.WithResourceDescription("Events on the default calendar for the current UTC day"),
		mcp.WithMIMEType("text/plain"),
	)
	s.AddResource(todayResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleToday(ctx, request, d)
	})
}

func handleSettings(request mcp.ReadResourceRequest, settings Settings) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func handleToday(ctx context.Context, request mcp.ReadResourceRequest, d *calendar_tools.Dispatcher) ([]mcp.ResourceContents, error) {
	res, err := d.InvokeKind(ctx, calendar_tools.KindGetTodayEvents, nil)
	if err != nil {
		return nil, err
	}
	if res.Failed {
		return nil, errors.New(res.Text)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     res.Text,
		},
	}, nil
}
