package server

import (
	"context"
	"time"

	"github.com/teemow/calendar-assistant/internal/calendar"
)

// stubService satisfies calendar.EventService with empty results.
type stubService struct{}

func (stubService) ListEvents(context.Context, calendar.ListOptions) ([]calendar.Event, error) {
	return nil, nil
}

func (stubService) TodayEvents(context.Context, string) ([]calendar.Event, error) {
	return nil, nil
}

func (stubService) CreateEvent(context.Context, string, calendar.EventInput) (*calendar.Event, error) {
	return &calendar.Event{ID: "stub"}, nil
}

func (stubService) UpdateEvent(context.Context, string, string, calendar.EventPatch) (*calendar.Event, error) {
	return &calendar.Event{ID: "stub"}, nil
}

func (stubService) DeleteEvent(context.Context, string, string) error {
	return nil
}

func (stubService) SearchEvents(context.Context, string, string, int) ([]calendar.Event, error) {
	return nil, nil
}

func (stubService) FreeBusy(context.Context, time.Time, time.Time, []string) (*calendar.FreeBusyResult, error) {
	return &calendar.FreeBusyResult{}, nil
}
