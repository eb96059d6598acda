package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/calendar-assistant/internal/calendar"
	"github.com/teemow/calendar-assistant/internal/logging"
)

// ServiceSource hands out the calendar service for an invocation.
// *server.ServerContext implements it.
type ServiceSource interface {
	CalendarService(ctx context.Context) (calendar.EventService, error)
}

// Result is the rendered outcome of an invocation. Failed marks a provider
// failure that was rendered as a negative message.
type Result struct {
	Text   string
	Failed bool
}

// Dispatcher routes tool invocations to the calendar service and renders
// the results as text.
type Dispatcher struct {
	services        ServiceSource
	logger          *slog.Logger
	now             func() time.Time
	defaultCalendar string
	location        *time.Location
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger provider failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithDefaultCalendar sets the calendar used when calendar_id is omitted.
func WithDefaultCalendar(calendarID string) Option {
	return func(d *Dispatcher) {
		if calendarID != "" {
			d.defaultCalendar = calendarID
		}
	}
}

// WithLocation sets the zone for timestamps without an offset.
func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) {
		if loc != nil {
			d.location = loc
		}
	}
}

// NewDispatcher creates a dispatcher over services.
func NewDispatcher(services ServiceSource, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		services:        services,
		logger:          slog.Default(),
		now:             time.Now,
		defaultCalendar: calendar.DefaultCalendarID,
		location:        time.UTC,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Invoke runs the tool called name.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (Result, error) {
	kind, err := KindFromName(name)
	if err != nil {
		return Result{}, err
	}
	return d.InvokeKind(ctx, kind, args)
}

// InvokeKind runs the tool of the given kind. Input errors and a missing
// calendar service are returned as errors; provider failures are rendered
// into a Result with Failed set.
func (d *Dispatcher) InvokeKind(ctx context.Context, kind Kind, args map[string]any) (Result, error) {
	a := arguments(args)

	switch kind {
	case KindListEvents:
		return d.listEvents(ctx, a)
	case KindGetTodayEvents:
		return d.getTodayEvents(ctx, a)
	case KindCreateEvent:
		return d.createEvent(ctx, a)
	case KindSearchEvents:
		return d.searchEvents(ctx, a)
	case KindDeleteEvent:
		return d.deleteEvent(ctx, a)
	case KindUpdateEvent:
		return d.updateEvent(ctx, a)
	case KindCheckAvailability:
		return d.checkAvailability(ctx, a)
	}
	return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, kind)
}

func (d *Dispatcher) service(ctx context.Context) (calendar.EventService, error) {
	if d.services == nil {
		return nil, errors.New("no calendar service configured")
	}
	return d.services.CalendarService(ctx)
}

// calendarID returns the calendar_id argument. Absent or empty means the
// default calendar.
func (d *Dispatcher) calendarID(a arguments) (string, error) {
	id, err := a.optionalString(argCalendarID, "")
	if err != nil || id != "" {
		return id, err
	}
	return d.defaultCalendar, nil
}

// resolveLocation returns the zone named by the timezone argument, or the
// dispatcher default.
func (d *Dispatcher) resolveLocation(a arguments) (*time.Location, string, error) {
	name, err := a.optionalString(argTimeZone, "")
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		return d.location, d.location.String(), nil
	}
	loc, err := calendar.LoadLocation(name)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidArgument, argTimeZone, err)
	}
	return loc, name, nil
}

// failed logs a provider failure and renders text as a failed result.
func (d *Dispatcher) failed(kind Kind, calendarID string, err error, text string) Result {
	d.logger.Warn("calendar operation failed",
		logging.KeyTool, kind.Name(),
		logging.KeyCalendar, calendarID,
		logging.KeyError, err.Error(),
	)
	return Result{Text: text, Failed: true}
}
