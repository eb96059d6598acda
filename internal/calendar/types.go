package calendar

import (
	"errors"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidTimestamp is returned when a date-time string cannot be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidInterval is returned when an interval does not start strictly before it ends.
	ErrInvalidInterval = errors.New("start must be before end")
)

// EventTime is the start or end of an event as reported by the provider.
// Exactly one of DateTime (RFC3339) or Date (all-day, YYYY-MM-DD) is set.
type EventTime struct {
	DateTime string
	Date     string
	TimeZone string
}

// IsAllDay reports whether the time is an all-day date.
func (t EventTime) IsAllDay() bool {
	return t.DateTime == "" && t.Date != ""
}

// Time parses the instant. All-day dates are midnight UTC.
func (t EventTime) Time() (time.Time, error) {
	switch {
	case t.DateTime != "":
		return time.Parse(time.RFC3339, t.DateTime)
	case t.Date != "":
		return time.Parse(dateLayout, t.Date)
	default:
		return time.Time{}, fmt.Errorf("%w: empty event time", ErrInvalidTimestamp)
	}
}

// String returns the provider's textual form, DateTime falling back to Date.
func (t EventTime) String() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// Event is a calendar entry.
type Event struct {
	ID          string
	Summary     string
	Start       EventTime
	End         EventTime
	Description string
	Location    string
	Attendees   []string
	HTMLLink    string
	Status      string
}

// TimeRange represents a time range
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// FreeBusyResult maps each queried calendar to its busy intervals.
type FreeBusyResult struct {
	Calendars map[string][]TimeRange
	// Errors holds per-calendar error reasons reported by the provider.
	Errors map[string][]string
}

// Busy returns the busy intervals of one calendar.
func (r *FreeBusyResult) Busy(calendarID string) []TimeRange {
	if r == nil {
		return nil
	}
	return r.Calendars[calendarID]
}

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
	Attendees   []string
	// TimeZone is an IANA zone name. Empty means the client default.
	TimeZone string
}

// Validate checks that the event has a title and a non-empty interval.
func (in EventInput) Validate() error {
	if in.Summary == "" {
		return errors.New("summary is required")
	}
	return ValidateInterval(in.Start, in.End)
}

// EventPatch describes a partial update. A nil field keeps the stored value;
// a non-nil empty string clears it.
type EventPatch struct {
	Summary     *string
	Description *string
	Start       *time.Time
	End         *time.Time
	// TimeZone applies to Start and End when they are set.
	TimeZone string
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Summary == nil && p.Description == nil && p.Start == nil && p.End == nil
}

// ListOptions selects the events returned by ListEvents.
type ListOptions struct {
	CalendarID string
	// TimeMin defaults to now.
	TimeMin time.Time
	// TimeMax defaults to TimeMin plus seven days.
	TimeMax time.Time
	// MaxResults defaults to 10.
	MaxResults int
}

// ValidateInterval returns ErrInvalidInterval unless start is before end.
func ValidateInterval(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: %s is not before %s", ErrInvalidInterval,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// toEvent converts a Google Calendar event.
func toEvent(event *calendar.Event) Event {
	if event == nil {
		return Event{}
	}

	ev := Event{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		HTMLLink:    event.HtmlLink,
		Status:      event.Status,
		Start:       toEventTime(event.Start),
		End:         toEventTime(event.End),
	}

	for _, att := range event.Attendees {
		if att != nil && att.Email != "" {
			ev.Attendees = append(ev.Attendees, att.Email)
		}
	}

	return ev
}

func toEventTime(t *calendar.EventDateTime) EventTime {
	if t == nil {
		return EventTime{}
	}
	return EventTime{DateTime: t.DateTime, Date: t.Date, TimeZone: t.TimeZone}
}

func toEventDateTime(t time.Time, timeZone string) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: timeZone,
	}
}

func toAttendees(emails []string) []*calendar.EventAttendee {
	if len(emails) == 0 {
		return nil
	}
	attendees := make([]*calendar.EventAttendee, 0, len(emails))
	for _, email := range emails {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}
	return attendees
}
