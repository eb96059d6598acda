package calendar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeICS(t *testing.T) {
	events := []Event{
		{
			ID:        "evt-1",
			Summary:   "Standup",
			Start:     EventTime{DateTime: "2024-01-15T10:00:00Z"},
			End:       EventTime{DateTime: "2024-01-15T10:15:00Z"},
			Location:  "Room 1",
			Attendees: []string{"a@example.com"},
		},
		{
			ID:      "evt-2",
			Summary: "Offsite",
			Start:   EventTime{Date: "2024-01-16"},
			End:     EventTime{Date: "2024-01-17"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeICS(&buf, events))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:"+ICSProductID)
	assert.Contains(t, out, "SUMMARY:Standup")
	assert.Contains(t, out, "DTSTART:20240115T100000Z")
	assert.Contains(t, out, "LOCATION:Room 1")
	assert.Contains(t, out, "mailto:a@example.com")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240116")

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 2)
}

func TestEncodeICS_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, EncodeICS(&buf, nil))

	err := EncodeICS(&buf, []Event{{ID: "broken", Summary: "x"}})
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}
