package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teemow/calendar-assistant/internal/calendar"
)

func (d *Dispatcher) listEvents(ctx context.Context, a arguments) (Result, error) {
	maxResults, err := a.positiveInt(argMaxResults, defaultMaxResults)
	if err != nil {
		return Result{}, err
	}
	daysAhead, err := a.positiveInt(argDaysAhead, defaultDaysAhead)
	if err != nil {
		return Result{}, err
	}
	calendarID, err := d.calendarID(a)
	if err != nil {
		return Result{}, err
	}

	svc, err := d.service(ctx)
	if err != nil {
		return Result{}, err
	}

	timeMin := d.now().UTC()
	events, err := svc.ListEvents(ctx, calendar.ListOptions{
		CalendarID: calendarID,
		TimeMin:    timeMin,
		TimeMax:    timeMin.AddDate(0, 0, daysAhead),
		MaxResults: maxResults,
	})
	if err != nil {
		return d.failed(KindListEvents, calendarID, err, renderUpcoming(nil)), nil
	}
	return Result{Text: renderUpcoming(events)}, nil
}

func (d *Dispatcher) getTodayEvents(ctx context.Context, a arguments) (Result, error) {
	calendarID, err := d.calendarID(a)
	if err != nil {
		return Result{}, err
	}

	svc, err := d.service(ctx)
	if err != nil {
		return Result{}, err
	}

	events, err := svc.TodayEvents(ctx, calendarID)
	if err != nil {
		return d.failed(KindGetTodayEvents, calendarID, err, renderToday(nil)), nil
	}
	return Result{Text: renderToday(events)}, nil
}

func (d *Dispatcher) createEvent(ctx context.Context, a arguments) (Result, error) {
	summary, err := a.requiredString(argSummary)
	if err != nil {
		return Result{}, err
	}
	loc, zone, err := d.resolveLocation(a)
	if err != nil {
		return Result{}, err
	}
	start, err := a.requiredTime(argStartTime, loc)
	if err != nil {
		return Result{}, err
	}
	end, err := a.requiredTime(argEndTime, loc)
	if err != nil {
		return Result{}, err
	}
	if err := calendar.ValidateInterval(start, end); err != nil {
		return Result{}, err
	}
	description, err := a.optionalString(argDescription, "")
	if err != nil {
		return Result{}, err
	}
	location, err := a.optionalString(argLocation, "")
	if err != nil {
		return Result{}, err
	}
	attendees, err := a.stringList(argAttendees)
	if err != nil {
		return Result{}, err
	}
	calendarID, err := d.calendarID(a)
	if err != nil {
		return Result{}, err
	}

	svc, err := d.service(ctx)
	if err != nil {
		return Result{}, err
	}

	event, err := svc.CreateEvent(ctx, calendarID, calendar.EventInput{
		Summary:     summary,
		Start:       start,
		End:         end,
		Description: description,
		Location:    location,
		Attendees:   attendees,
		TimeZone:    zone,
	})
	if err == nil && event == nil {
		err = errors.New("provider returned no event")
	}
	if err != nil {
		return d.failed(KindCreateEvent, calendarID, err, msgCreateFailed), nil
	}
	return Result{Text: renderCreated(*event)}, nil
}

func (d *Dispatcher) searchEvents(ctx context.Context, a arguments) (Result, error) {
	query, err := a.requiredString(argQuery)
	if err != nil {
		return Result{}, err
	}
	maxResults, err := a.positiveInt(argMaxResults, defaultMaxResults)
	if err != nil {
		return Result{}, err
	}
	calendarID, err := d.calendarID(a)
	if err != nil {
		return Result{}, err
	}

	svc, err := d.service(ctx)
	if err != nil {
		return Result{}, err
	}

	events, err := svc.SearchEvents(ctx, calendarID, query, maxResults)
	if err != nil {
		return d.failed(KindSearchEvents, calendarID, err, renderSearch(query, nil)), nil
	}
	return Result{Text: renderSearch(query, events)}, nil
}

func (d *Dispatcher) deleteEvent(ctx context.Context, a arguments) (Result, error) {
	eventID, err := a.requiredString(argEventID)
	if err != nil {
		return Result{}, err
	}
	calendarID, err := d.calendarID(a)
	if err != nil {
		return Result{}, err
	}

	svc, err := d.service(ctx)
	if err != nil {
		return Result{}, err
	}

	if err := svc.DeleteEvent(ctx, calendarID, eventID); err != nil {
		return d.failed(KindDeleteEvent, calendarID, err, msgDeleteFailed(eventID)), nil
	}
	return Result{Text: renderDeleted(eventID)}, nil
}

func (d *Dispatcher) updateEvent(ctx context.Context, a arguments) (Result, error) {
	eventID, err := a.requiredString(argEventID)
	if err != nil {
		return Result{}, err
	}
	loc, zone, err := d.resolveLocation(a)
	if err != nil {
		return Result{}, err
	}

	var patch calendar.EventPatch
	patch.TimeZone = zone
	if patch.Summary, err = a.stringPointer(argSummary); err != nil {
		return Result{}, err
	}
	if patch.Description, err = a.stringPointer(argDescription); err != nil {
		return Result{}, err
	}
	if patch.Start, err = a.timePointer(argStartTime, loc); err != nil {
		return Result{}, err
	}
	if patch.End, err = a.timePointer(argEndTime, loc); err != nil {
		return Result{}, err
	}
	if patch.Start != nil && patch.End != nil {
		if err := calendar.ValidateInterval(*patch.Start, *patch.End); err != nil {
			return Result{}, err
		}
	}
	calendarID, err := d.calendarID(a)
	if err != nil {
		return Result{}, err
	}

	svc, err := d.service(ctx)
	if err != nil {
		return Result{}, err
	}

	event, err := svc.UpdateEvent(ctx, calendarID, eventID, patch)
	if err != nil {
		// The merged interval is only known after the fetch.
		if errors.Is(err, calendar.ErrInvalidInterval) {
			return Result{}, err
		}
		return d.failed(KindUpdateEvent, calendarID, err, msgUpdateFailed), nil
	}
	if event == nil {
		return d.failed(KindUpdateEvent, calendarID, errors.New("provider returned no event"), msgUpdateFailed), nil
	}
	return Result{Text: renderUpdated(*event)}, nil
}

func (d *Dispatcher) checkAvailability(ctx context.Context, a arguments) (Result, error) {
	loc, _, err := d.resolveLocation(a)
	if err != nil {
		return Result{}, err
	}
	start, err := a.requiredTime(argStartTime, loc)
	if err != nil {
		return Result{}, err
	}
	end, err := a.requiredTime(argEndTime, loc)
	if err != nil {
		return Result{}, err
	}
	if err := calendar.ValidateInterval(start, end); err != nil {
		return Result{}, err
	}
	calendarID, err := d.calendarID(a)
	if err != nil {
		return Result{}, err
	}

	svc, err := d.service(ctx)
	if err != nil {
		return Result{}, err
	}

	result, err := svc.FreeBusy(ctx, start, end, []string{calendarID})
	if err == nil && result != nil {
		if reasons := result.Errors[calendarID]; len(reasons) > 0 {
			err = fmt.Errorf("freebusy reported errors for %s: %v", calendarID, reasons)
		}
	}
	if err != nil {
		return d.failed(KindCheckAvailability, calendarID, err, msgAvailabilityFailed), nil
	}

	return Result{Text: renderAvailability(start, end, clip(result.Busy(calendarID), start, end))}, nil
}

// clip drops busy periods outside [start, end).
func clip(busy []calendar.TimeRange, start, end time.Time) []calendar.TimeRange {
	out := busy[:0:0]
	for _, period := range busy {
		if period.End.After(start) && period.Start.Before(end) {
			out = append(out, period)
		}
	}
	return out
}
