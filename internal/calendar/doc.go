// Package calendar is the calendar client used by the MCP tools.
//
// Client wraps a Google Calendar API service behind the EventService
// interface. Every operation returns an error when the provider fails, so a
// caller can tell an empty result apart from a failed request. The service
// is injected:
//
//	svc, err := google.NewCalendarService(ctx, "credentials.json", "token.json")
//	if err != nil {
//	    return err
//	}
//	client := calendar.NewClient(svc, calendar.WithTimeout(30*time.Second))
//
//	events, err := client.ListEvents(ctx, calendar.ListOptions{MaxResults: 5})
//
// Timestamps cross the tool boundary as ISO-8601 strings and are parsed by
// ParseTimestamp. EncodeICS exports events as iCalendar.
package calendar
