package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

// ICSProductID identifies the producer in exported calendars.
const ICSProductID = "-//calendar-assistant//EN"

// EncodeICS writes events as a single VCALENDAR.
func EncodeICS(w io.Writer, events []Event) error {
	if len(events) == 0 {
		return fmt.Errorf("no events to export")
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ICSProductID)

	stamp := time.Now().UTC()
	for _, ev := range events {
		vevent, err := toICal(ev, stamp)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, vevent)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func toICal(ev Event, stamp time.Time) (*ical.Component, error) {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, ev.ID)
	ve.Props.SetText(ical.PropSummary, ev.Summary)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)

	if err := setEventTime(ve, ical.PropDateTimeStart, ev.Start); err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	if err := setEventTime(ve, ical.PropDateTimeEnd, ev.End); err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.ID, err)
	}

	if ev.Description != "" {
		ve.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		ve.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.HTMLLink != "" {
		ve.Props.SetText(ical.PropURL, ev.HTMLLink)
	}
	for _, attendee := range ev.Attendees {
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", attendee))
		ve.Props.Add(p)
	}
	return ve, nil
}

func setEventTime(ve *ical.Component, name string, t EventTime) error {
	value, err := t.Time()
	if err != nil {
		return err
	}
	if t.IsAllDay() {
		ve.Props.SetDate(name, value)
	} else {
		ve.Props.SetDateTime(name, value.UTC())
	}
	return nil
}
