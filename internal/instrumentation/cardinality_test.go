package instrumentation

import "testing"

func TestCalendarLabel(t *testing.T) {
	tests := []struct {
		calendarID string
		expected   string
	}{
		{"", CalendarPrimary},
		{"primary", CalendarPrimary},
		{"jane@example.com", CalendarSecondary},
		{"team@group.calendar.google.com", CalendarSecondary},
		{"Primary", CalendarSecondary},
	}

	for _, tt := range tests {
		t.Run(tt.calendarID, func(t *testing.T) {
			if got := CalendarLabel(tt.calendarID); got != tt.expected {
				t.Errorf("CalendarLabel(%q) = %q, want %q", tt.calendarID, got, tt.expected)
			}
		})
	}
}
