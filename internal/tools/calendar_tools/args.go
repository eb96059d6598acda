package calendar_tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/teemow/calendar-assistant/internal/calendar"
)

var (
	// ErrMissingArgument is returned when a required argument is absent or empty.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrInvalidArgument is returned when an argument has the wrong type or value.
	ErrInvalidArgument = errors.New("invalid argument")
)

// arguments wraps the raw argument map of one invocation. A key holding
// JSON null counts as absent.
type arguments map[string]any

func (a arguments) has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// optionalString returns the string under key, or def when it is absent.
func (a arguments) optionalString(key, def string) (string, error) {
	if !a.has(key) {
		return def, nil
	}
	s, ok := a[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgument, key, a[key])
	}
	return s, nil
}

// requiredString returns the non-empty string under key.
func (a arguments) requiredString(key string) (string, error) {
	if !a.has(key) {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, key)
	}
	s, err := a.optionalString(key, "")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, key)
	}
	return s, nil
}

// stringPointer returns nil when key is absent and a pointer to its value
// otherwise, so an explicit "" is kept.
func (a arguments) stringPointer(key string) (*string, error) {
	if !a.has(key) {
		return nil, nil
	}
	s, err := a.optionalString(key, "")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// positiveInt returns the integer under key, or def when it is absent.
// JSON numbers and numeric strings are accepted.
func (a arguments) positiveInt(key string, def int) (int, error) {
	if !a.has(key) {
		return def, nil
	}

	var n int
	switch v := a[key].(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidArgument, key, v)
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidArgument, key, v.String())
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidArgument, key, v)
		}
		n = i
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidArgument, key, v)
	}

	if n < 1 {
		return 0, fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidArgument, key, n)
	}
	return n, nil
}

// stringList accepts a JSON array of strings or a comma-separated string.
// Blank entries are dropped.
func (a arguments) stringList(key string) ([]string, error) {
	if !a.has(key) {
		return nil, nil
	}

	var raw []string
	switch v := a[key].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		raw = make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] must be a string, got %T", ErrInvalidArgument, key, i, item)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%w: %s must be an array of strings, got %T", ErrInvalidArgument, key, v)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// requiredTime parses the timestamp under key. Times without an offset are
// taken in loc.
func (a arguments) requiredTime(key string, loc *time.Location) (time.Time, error) {
	s, err := a.requiredString(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := calendar.ParseTimestampIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

// timePointer is requiredTime for optional keys.
func (a arguments) timePointer(key string, loc *time.Location) (*time.Time, error) {
	if !a.has(key) {
		return nil, nil
	}
	t, err := a.requiredTime(key, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
