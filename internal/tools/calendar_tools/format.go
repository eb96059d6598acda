package calendar_tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/calendar-assistant/internal/calendar"
)

const untitledEvent = "No title"

// formatEvent renders the labeled block of one event.
func formatEvent(ev calendar.Event) string {
	summary := ev.Summary
	if summary == "" {
		summary = untitledEvent
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", summary)
	fmt.Fprintf(&b, "Start: %s\n", ev.Start)
	fmt.Fprintf(&b, "End: %s\n", ev.End)
	if ev.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", ev.Location)
	}
	if ev.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", ev.Description)
	}
	fmt.Fprintf(&b, "Event ID: %s\n", ev.ID)
	return b.String()
}

// formatEventList renders a header followed by one numbered block per event.
func formatEventList(header string, events []calendar.Event) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for i, ev := range events {
		fmt.Fprintf(&b, "--- Event %d ---\n", i+1)
		b.WriteString(formatEvent(ev))
		b.WriteString("\n")
	}
	return b.String()
}

func renderUpcoming(events []calendar.Event) string {
	if len(events) == 0 {
		return "No upcoming events found."
	}
	return formatEventList(fmt.Sprintf("Found %d upcoming event(s):", len(events)), events)
}

func renderToday(events []calendar.Event) string {
	if len(events) == 0 {
		return "No events scheduled for today."
	}
	return formatEventList(fmt.Sprintf("Today's events (%d total):", len(events)), events)
}

func renderSearch(query string, events []calendar.Event) string {
	if len(events) == 0 {
		return fmt.Sprintf("No events found matching '%s'.", query)
	}
	return formatEventList(fmt.Sprintf("Found %d event(s) matching '%s':", len(events), query), events)
}

func renderCreated(ev calendar.Event) string {
	return "✅ Event created successfully!\n\n" + formatEvent(ev)
}

func renderUpdated(ev calendar.Event) string {
	return "✅ Event updated successfully!\n\n" + formatEvent(ev)
}

func renderDeleted(eventID string) string {
	return fmt.Sprintf("✅ Event %s deleted successfully.", eventID)
}

func renderAvailability(start, end time.Time, busy []calendar.TimeRange) string {
	if len(busy) == 0 {
		return fmt.Sprintf("✅ You are FREE from %s to %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "❌ You have %d conflict(s):\n\n", len(busy))
	for _, period := range busy {
		fmt.Fprintf(&b, "Busy: %s to %s\n", period.Start.Format(time.RFC3339), period.End.Format(time.RFC3339))
	}
	return b.String()
}

const (
	msgCreateFailed       = "❌ Failed to create event."
	msgUpdateFailed       = "❌ Failed to update event."
	msgAvailabilityFailed = "❌ Failed to check availability."
)

func msgDeleteFailed(eventID string) string {
	return fmt.Sprintf("❌ Failed to delete event %s.", eventID)
}
