package calendar_tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/calendar-assistant/internal/instrumentation"
)

// ErrUnknownTool is returned when a tool name is not in the catalog.
var ErrUnknownTool = errors.New("unknown tool")

// Kind identifies one catalog operation.
type Kind int

const (
	KindListEvents Kind = iota
	KindGetTodayEvents
	KindCreateEvent
	KindSearchEvents
	KindDeleteEvent
	KindUpdateEvent
	KindCheckAvailability

	kindCount
)

var kindNames = [kindCount]string{
	KindListEvents:        "list_events",
	KindGetTodayEvents:    "get_today_events",
	KindCreateEvent:       "create_event",
	KindSearchEvents:      "search_events",
	KindDeleteEvent:       "delete_event",
	KindUpdateEvent:       "update_event",
	KindCheckAvailability: "check_availability",
}

var kindOperations = [kindCount]string{
	KindListEvents:        instrumentation.OperationList,
	KindGetTodayEvents:    instrumentation.OperationList,
	KindCreateEvent:       instrumentation.OperationCreate,
	KindSearchEvents:      instrumentation.OperationSearch,
	KindDeleteEvent:       instrumentation.OperationDelete,
	KindUpdateEvent:       instrumentation.OperationUpdate,
	KindCheckAvailability: instrumentation.OperationFreeBusy,
}

// Kinds returns every kind in catalog order.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// KindFromName resolves a tool name.
func KindFromName(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

func (k Kind) valid() bool {
	return k >= 0 && k < kindCount
}

// Name returns the tool name advertised to clients.
func (k Kind) Name() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) String() string {
	return k.Name()
}

// ReadOnly reports whether the tool leaves the calendar unchanged.
func (k Kind) ReadOnly() bool {
	switch k {
	case KindCreateEvent, KindDeleteEvent, KindUpdateEvent:
		return false
	}
	return true
}

// Operation returns the calendar API operation the tool performs.
func (k Kind) Operation() string {
	if !k.valid() {
		return ""
	}
	return kindOperations[k]
}

// ParamType is the JSON schema type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamArray   ParamType = "array"
)

// Param describes one tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Default is nil when the parameter has no default.
	Default any
}

// ToolSchema is a catalog entry.
type ToolSchema struct {
	Kind        Kind
	Description string
	Params      []Param
}

// Name returns the tool name.
func (s ToolSchema) Name() string {
	return s.Kind.Name()
}

// Required lists the names of the required parameters.
func (s ToolSchema) Required() []string {
	var names []string
	for _, p := range s.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Tool builds the mcp-go tool definition.
func (s ToolSchema) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(s.Description),
		mcp.WithReadOnlyHintAnnotation(s.Kind.ReadOnly()),
		mcp.WithDestructiveHintAnnotation(s.Kind == KindDeleteEvent || s.Kind == KindUpdateEvent),
	}

	for _, p := range s.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}

		switch p.Type {
		case ParamInteger:
			if d, ok := p.Default.(int); ok {
				props = append(props, mcp.DefaultNumber(float64(d)))
			}
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case ParamArray:
			props = append(props, mcp.Items(map[string]any{"type": "string"}))
			opts = append(opts, mcp.WithArray(p.Name, props...))
		default:
			if d, ok := p.Default.(string); ok {
				props = append(props, mcp.DefaultString(d))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}

	return mcp.NewTool(s.Name(), opts...)
}

// Parameter names shared by several tools.
const (
	argCalendarID  = "calendar_id"
	argTimeZone    = "timezone"
	argMaxResults  = "max_results"
	argDaysAhead   = "days_ahead"
	argSummary     = "summary"
	argStartTime   = "start_time"
	argEndTime     = "end_time"
	argDescription = "description"
	argLocation    = "location"
	argAttendees   = "attendees"
	argQuery       = "query"
	argEventID     = "event_id"
)

// Defaults of the optional parameters.
const (
	defaultMaxResults = 10
	defaultDaysAhead  = 7
)

var (
	calendarParam = Param{
		Name:        argCalendarID,
		Type:        ParamString,
		Description: "Calendar ID (default: the configured calendar, usually 'primary')",
	}
	timeZoneParam = Param{
		Name:        argTimeZone,
		Type:        ParamString,
		Description: "IANA time zone for times without an offset, e.g. 'Europe/Berlin' (default: the configured zone)",
	}
)

var catalog = [kindCount]ToolSchema{
	KindListEvents: {
		Kind:        KindListEvents,
		Description: "List upcoming calendar events",
		Params: []Param{
			{Name: argMaxResults, Type: ParamInteger, Description: "Maximum number of events to return (default: 10)", Default: defaultMaxResults},
			{Name: argDaysAhead, Type: ParamInteger, Description: "Number of days ahead to look (default: 7)", Default: defaultDaysAhead},
			calendarParam,
		},
	},
	KindGetTodayEvents: {
		Kind:        KindGetTodayEvents,
		Description: "Get all events scheduled for today",
		Params:      []Param{calendarParam},
	},
	KindCreateEvent: {
		Kind:        KindCreateEvent,
		Description: "Create a new calendar event",
		Params: []Param{
			{Name: argSummary, Type: ParamString, Description: "Event title/summary", Required: true},
			{Name: argStartTime, Type: ParamString, Description: "Start time in ISO format (e.g., 2024-01-15T10:00:00)", Required: true},
			{Name: argEndTime, Type: ParamString, Description: "End time in ISO format (e.g., 2024-01-15T11:00:00)", Required: true},
			{Name: argDescription, Type: ParamString, Description: "Event description (optional)", Default: ""},
			{Name: argLocation, Type: ParamString, Description: "Event location (optional)", Default: ""},
			{Name: argAttendees, Type: ParamArray, Description: "List of attendee emails (optional)"},
			calendarParam,
			timeZoneParam,
		},
	},
	KindSearchEvents: {
		Kind:        KindSearchEvents,
		Description: "Search for events by keyword",
		Params: []Param{
			{Name: argQuery, Type: ParamString, Description: "Search query", Required: true},
			{Name: argMaxResults, Type: ParamInteger, Description: "Maximum results (default: 10)", Default: defaultMaxResults},
			calendarParam,
		},
	},
	KindDeleteEvent: {
		Kind:        KindDeleteEvent,
		Description: "Delete a calendar event by ID",
		Params: []Param{
			{Name: argEventID, Type: ParamString, Description: "ID of the event to delete", Required: true},
			calendarParam,
		},
	},
	KindUpdateEvent: {
		Kind:        KindUpdateEvent,
		Description: "Update an existing calendar event. Omitted fields keep their value; an empty summary or description clears it",
		Params: []Param{
			{Name: argEventID, Type: ParamString, Description: "ID of the event to update", Required: true},
			{Name: argSummary, Type: ParamString, Description: "New event title (optional)"},
			{Name: argStartTime, Type: ParamString, Description: "New start time in ISO format (optional)"},
			{Name: argEndTime, Type: ParamString, Description: "New end time in ISO format (optional)"},
			{Name: argDescription, Type: ParamString, Description: "New description (optional)"},
			calendarParam,
			timeZoneParam,
		},
	},
	KindCheckAvailability: {
		Kind:        KindCheckAvailability,
		Description: "Check if a time slot is free or busy",
		Params: []Param{
			{Name: argStartTime, Type: ParamString, Description: "Start time in ISO format", Required: true},
			{Name: argEndTime, Type: ParamString, Description: "End time in ISO format", Required: true},
			calendarParam,
			timeZoneParam,
		},
	},
}

// Catalog returns the tool catalog in a fixed order.
func Catalog() []ToolSchema {
	out := make([]ToolSchema, len(catalog))
	copy(out, catalog[:])
	return out
}

// Schema returns the catalog entry of kind.
func Schema(kind Kind) (ToolSchema, bool) {
	if !kind.valid() {
		return ToolSchema{}, false
	}
	return catalog[kind], true
}
