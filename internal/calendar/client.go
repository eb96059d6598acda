package calendar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/calendar-assistant/internal/google"
	"github.com/teemow/calendar-assistant/internal/instrumentation"
	"github.com/teemow/calendar-assistant/internal/logging"
)

// Defaults applied when an operation leaves a value unset.
const (
	DefaultCalendarID      = "primary"
	DefaultTimeZone        = "UTC"
	DefaultMaxResults      = 10
	DefaultListWindow      = 7 * 24 * time.Hour
	DefaultTodayMaxResults = 50
)

// EventService is the set of calendar operations the tool dispatcher needs.
// *Client implements it against the Google Calendar API.
type EventService interface {
	ListEvents(ctx context.Context, opts ListOptions) ([]Event, error)
	TodayEvents(ctx context.Context, calendarID string) ([]Event, error)
	CreateEvent(ctx context.Context, calendarID string, input EventInput) (*Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	SearchEvents(ctx context.Context, calendarID, query string, maxResults int) ([]Event, error)
	FreeBusy(ctx context.Context, timeMin, timeMax time.Time, calendars []string) (*FreeBusyResult, error)
}

// Client wraps the Google Calendar service
type Client struct {
	svc             *calendar.Service
	logger          logging.Logger
	now             func() time.Time
	defaultCalendar string
	defaultTimeZone string
	timeout         time.Duration
	metrics         *instrumentation.Metrics
}

var _ EventService = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger provider failures are reported to.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDefaultCalendar sets the calendar used when an operation passes "".
func WithDefaultCalendar(calendarID string) Option {
	return func(c *Client) {
		if calendarID != "" {
			c.defaultCalendar = calendarID
		}
	}
}

// WithDefaultTimeZone sets the zone attached to created and updated events.
func WithDefaultTimeZone(tz string) Option {
	return func(c *Client) {
		if tz != "" {
			c.defaultTimeZone = tz
		}
	}
}

// WithTimeout bounds every provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMetrics records every provider call.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient wraps an existing Calendar API service.
func NewClient(svc *calendar.Service, opts ...Option) *Client {
	c := &Client{
		svc:             svc,
		logger:          logging.DefaultLogger(),
		now:             time.Now,
		defaultCalendar: DefaultCalendarID,
		defaultTimeZone: DefaultTimeZone,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromFiles authenticates with the OAuth client credentials and
// persisted token files and returns a ready client.
func NewClientFromFiles(ctx context.Context, credentialsFile, tokenFile string, opts ...Option) (*Client, error) {
	svc, err := google.NewCalendarService(ctx, credentialsFile, tokenFile)
	if err != nil {
		return nil, err
	}
	return NewClient(svc, opts...), nil
}

// DefaultCalendar returns the calendar used when an operation passes "".
func (c *Client) DefaultCalendar() string {
	return c.defaultCalendar
}

func (c *Client) calendarID(id string) string {
	if id == "" {
		return c.defaultCalendar
	}
	return id
}

// call runs one provider request with the configured timeout, a client
// span, metrics and failure logging.
func (c *Client) call(ctx context.Context, operation, calendarID string, fn func(ctx context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := instrumentation.StartCalendarAPISpan(ctx, operation, calendarID)
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	instrumentation.EndSpan(span, err)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		c.logger.Error("calendar API call failed",
			logging.KeyOperation, operation,
			logging.KeyCalendar, calendarID,
			logging.KeyDuration, duration,
			logging.KeyError, err.Error(),
		)
	}
	c.metrics.RecordCalendarAPIOperation(ctx, operation, status, duration)

	return err
}

// ListEvents returns single-occurrence events in [TimeMin, TimeMax) ordered
// by start time and truncated to MaxResults.
func (c *Client) ListEvents(ctx context.Context, opts ListOptions) ([]Event, error) {
	calendarID := c.calendarID(opts.CalendarID)
	timeMin := opts.TimeMin
	if timeMin.IsZero() {
		timeMin = c.now()
	}
	timeMax := opts.TimeMax
	if timeMax.IsZero() {
		timeMax = timeMin.Add(DefaultListWindow)
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if err := ValidateInterval(timeMin, timeMax); err != nil {
		return nil, err
	}

	var items []*calendar.Event
	err := c.call(ctx, instrumentation.OperationList, calendarID, func(ctx context.Context) error {
		resp, err := c.svc.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			MaxResults(int64(maxResults)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		items = resp.Items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return sortAndTruncate(items, maxResults), nil
}

// TodayEvents returns up to 50 events intersecting the current UTC day.
func (c *Client) TodayEvents(ctx context.Context, calendarID string) ([]Event, error) {
	now := c.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := c.ListEvents(ctx, ListOptions{
		CalendarID: calendarID,
		TimeMin:    dayStart,
		TimeMax:    dayEnd,
		MaxResults: DefaultTodayMaxResults,
	})
	if err != nil {
		return nil, err
	}

	today := events[:0]
	for _, ev := range events {
		if intersects(ev, dayStart, dayEnd) {
			today = append(today, ev)
		}
	}
	return today, nil
}

// CreateEvent inserts a new event and returns it with its provider-assigned ID.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*Event, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	calendarID = c.calendarID(calendarID)
	timeZone := input.TimeZone
	if timeZone == "" {
		timeZone = c.defaultTimeZone
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start:       toEventDateTime(input.Start, timeZone),
		End:         toEventDateTime(input.End, timeZone),
		Attendees:   toAttendees(input.Attendees),
	}

	var created *calendar.Event
	err := c.call(ctx, instrumentation.OperationCreate, calendarID, func(ctx context.Context) error {
		var err error
		created, err = c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	if created == nil || created.Id == "" {
		return nil, errors.New("failed to create event: provider returned no event ID")
	}

	ev := toEvent(created)
	return &ev, nil
}

// UpdateEvent fetches the event, applies the non-nil patch fields and writes
// the merged record back. An empty patch returns the stored event unchanged.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, patch EventPatch) (*Event, error) {
	calendarID = c.calendarID(calendarID)
	timeZone := patch.TimeZone
	if timeZone == "" {
		timeZone = c.defaultTimeZone
	}

	var existing *calendar.Event
	err := c.call(ctx, instrumentation.OperationGet, calendarID, func(ctx context.Context) error {
		var err error
		existing, err = c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}
	if patch.IsEmpty() {
		ev := toEvent(existing)
		return &ev, nil
	}

	if patch.Summary != nil {
		existing.Summary = *patch.Summary
		if existing.Summary == "" {
			existing.ForceSendFields = append(existing.ForceSendFields, "Summary")
		}
	}
	if patch.Description != nil {
		existing.Description = *patch.Description
		if existing.Description == "" {
			existing.ForceSendFields = append(existing.ForceSendFields, "Description")
		}
	}
	if patch.Start != nil {
		existing.Start = toEventDateTime(*patch.Start, timeZone)
	}
	if patch.End != nil {
		existing.End = toEventDateTime(*patch.End, timeZone)
	}

	if patch.Start != nil || patch.End != nil {
		start, errStart := toEventTime(existing.Start).Time()
		end, errEnd := toEventTime(existing.End).Time()
		if errStart == nil && errEnd == nil {
			if err := ValidateInterval(start, end); err != nil {
				return nil, err
			}
		}
	}

	var updated *calendar.Event
	err = c.call(ctx, instrumentation.OperationUpdate, calendarID, func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Events.Update(calendarID, eventID, existing).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	ev := toEvent(updated)
	return &ev, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	calendarID = c.calendarID(calendarID)
	err := c.call(ctx, instrumentation.OperationDelete, calendarID, func(ctx context.Context) error {
		return c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// SearchEvents returns events matching the provider's free-text query,
// past and future, ordered by start time.
func (c *Client) SearchEvents(ctx context.Context, calendarID, query string, maxResults int) ([]Event, error) {
	calendarID = c.calendarID(calendarID)
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var items []*calendar.Event
	err := c.call(ctx, instrumentation.OperationSearch, calendarID, func(ctx context.Context) error {
		resp, err := c.svc.Events.List(calendarID).
			Q(query).
			MaxResults(int64(maxResults)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		items = resp.Items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	return sortAndTruncate(items, maxResults), nil
}

// FreeBusy returns the busy intervals of each calendar within the window.
// An empty calendars list queries the default calendar.
func (c *Client) FreeBusy(ctx context.Context, timeMin, timeMax time.Time, calendars []string) (*FreeBusyResult, error) {
	if err := ValidateInterval(timeMin, timeMax); err != nil {
		return nil, err
	}
	if len(calendars) == 0 {
		calendars = []string{c.defaultCalendar}
	}

	items := make([]*calendar.FreeBusyRequestItem, len(calendars))
	for i, id := range calendars {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}
	query := &calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   items,
	}

	var resp *calendar.FreeBusyResponse
	err := c.call(ctx, instrumentation.OperationFreeBusy, calendars[0], func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Freebusy.Query(query).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	result := &FreeBusyResult{
		Calendars: make(map[string][]TimeRange, len(resp.Calendars)),
		Errors:    map[string][]string{},
	}
	for calID, cal := range resp.Calendars {
		busy := make([]TimeRange, 0, len(cal.Busy))
		for _, period := range cal.Busy {
			start, errStart := time.Parse(time.RFC3339, period.Start)
			end, errEnd := time.Parse(time.RFC3339, period.End)
			if errStart != nil || errEnd != nil {
				c.logger.Warn("skipping unparsable busy period",
					logging.KeyCalendar, calID,
					"start", period.Start,
					"end", period.End,
				)
				continue
			}
			busy = append(busy, TimeRange{Start: start, End: end})
		}
		result.Calendars[calID] = busy

		for _, e := range cal.Errors {
			result.Errors[calID] = append(result.Errors[calID], e.Reason)
		}
	}

	return result, nil
}

// sortAndTruncate converts provider items, orders them by start time and
// caps the count.
func sortAndTruncate(items []*calendar.Event, maxResults int) []Event {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		if item != nil {
			events = append(events, toEvent(item))
		}
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		return startOf(a).Compare(startOf(b))
	})

	if len(events) > maxResults {
		events = events[:maxResults]
	}
	return events
}

func startOf(ev Event) time.Time {
	t, _ := ev.Start.Time()
	return t
}

// intersects reports whether the event overlaps [from, to). Events whose
// times cannot be parsed are kept.
func intersects(ev Event, from, to time.Time) bool {
	start, errStart := ev.Start.Time()
	end, errEnd := ev.End.Time()
	if errStart != nil || errEnd != nil {
		return true
	}
	return start.Before(to) && end.After(from)
}
