package calendar_tools

import (
	"context"
	"errors"
	"time"

	"github.com/teemow/calendar-assistant/internal/calendar"
)

var errProvider = errors.New("googleapi: Error 500: backend error")

// fakeService records the last call and answers from canned data.
type fakeService struct {
	events   []calendar.Event
	freeBusy *calendar.FreeBusyResult
	err      error
	// updateErr overrides err for UpdateEvent.
	updateErr error

	calls        int
	listOpts     calendar.ListOptions
	calendarID   string
	eventID      string
	query        string
	maxResults   int
	input        calendar.EventInput
	patch        calendar.EventPatch
	fbCalendars  []string
	fbMin, fbMax time.Time
}

func (f *fakeService) ListEvents(_ context.Context, opts calendar.ListOptions) ([]calendar.Event, error) {
	f.calls++
	f.listOpts = opts
	f.calendarID = opts.CalendarID
	return f.events, f.err
}

func (f *fakeService) TodayEvents(_ context.Context, calendarID string) ([]calendar.Event, error) {
	f.calls++
	f.calendarID = calendarID
	return f.events, f.err
}

func (f *fakeService) CreateEvent(_ context.Context, calendarID string, in calendar.EventInput) (*calendar.Event, error) {
	f.calls++
	f.calendarID = calendarID
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.Event{
		ID:          "evt123",
		Summary:     in.Summary,
		Start:       calendar.EventTime{DateTime: in.Start.Format(time.RFC3339), TimeZone: in.TimeZone},
		End:         calendar.EventTime{DateTime: in.End.Format(time.RFC3339), TimeZone: in.TimeZone},
		Description: in.Description,
		Location:    in.Location,
		Attendees:   in.Attendees,
	}, nil
}

func (f *fakeService) UpdateEvent(_ context.Context, calendarID, eventID string, patch calendar.EventPatch) (*calendar.Event, error) {
	f.calls++
	f.calendarID = calendarID
	f.eventID = eventID
	f.patch = patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.err != nil {
		return nil, f.err
	}

	ev := calendar.Event{
		ID:          eventID,
		Summary:     "Old title",
		Start:       calendar.EventTime{DateTime: "2024-01-15T09:00:00Z"},
		End:         calendar.EventTime{DateTime: "2024-01-15T10:00:00Z"},
		Description: "old description",
	}
	if patch.Summary != nil {
		ev.Summary = *patch.Summary
	}
	if patch.Description != nil {
		ev.Description = *patch.Description
	}
	if patch.Start != nil {
		ev.Start.DateTime = patch.Start.Format(time.RFC3339)
	}
	if patch.End != nil {
		ev.End.DateTime = patch.End.Format(time.RFC3339)
	}
	return &ev, nil
}

func (f *fakeService) DeleteEvent(_ context.Context, calendarID, eventID string) error {
	f.calls++
	f.calendarID = calendarID
	f.eventID = eventID
	return f.err
}

func (f *fakeService) SearchEvents(_ context.Context, calendarID, query string, maxResults int) ([]calendar.Event, error) {
	f.calls++
	f.calendarID = calendarID
	f.query = query
	f.maxResults = maxResults
	return f.events, f.err
}

func (f *fakeService) FreeBusy(_ context.Context, timeMin, timeMax time.Time, calendars []string) (*calendar.FreeBusyResult, error) {
	f.calls++
	f.fbMin, f.fbMax = timeMin, timeMax
	f.fbCalendars = calendars
	if f.err != nil {
		return nil, f.err
	}
	if f.freeBusy == nil {
		return &calendar.FreeBusyResult{Calendars: map[string][]calendar.TimeRange{}}, nil
	}
	return f.freeBusy, nil
}

// staticSource hands out a fixed service or error.
type staticSource struct {
	svc calendar.EventService
	err error
}

func (s staticSource) CalendarService(context.Context) (calendar.EventService, error) {
	return s.svc, s.err
}
