package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Layouts without a zone. Fractional seconds are accepted after the
// seconds field by time.Parse even though the layouts omit them.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	dateLayout,
}

// ParseTimestamp parses an ISO-8601 date-time. Strings without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	return ParseTimestampIn(s, time.UTC)
}

// ParseTimestampIn parses an ISO-8601 date-time, interpreting strings
// without a zone in loc.
//
//	ParseTimestampIn("2024-01-15T10:00:00+01:00", loc) // explicit offset wins
//	ParseTimestampIn("2024-01-15T10:00:00", loc)       // 10:00 in loc
//	ParseTimestampIn("2024-01-15", loc)                // midnight in loc
func ParseTimestampIn(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 date-time", ErrInvalidTimestamp, s)
}

// LoadLocation resolves an IANA zone name. Empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}
