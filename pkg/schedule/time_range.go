package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ClosedLabel is stored when a day is explicitly closed.
const ClosedLabel = "CLOSED"

// TimeOfDay is a wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the time in 12-hour form, e.g. "2:30 PM".
func (c TimeOfDay) String() string {
	suffix := "AM"
	hour := c.Hour
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		hour -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, c.Minute, suffix)
}

// ParseTimeOfDay accepts "14:00", "9:00AM", "9:00 am", "2PM" and "9".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	if s == "" {
		return TimeOfDay{}, fmt.Errorf("empty time")
	}

	meridiem := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		meridiem = s[len(s)-2:]
		s = s[:len(s)-2]
	}

	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", value)
	}
	minute := 0
	if hasMinutes {
		if len(minutePart) != 2 {
			return TimeOfDay{}, fmt.Errorf("invalid minutes in %q", value)
		}
		minute, err = strconv.Atoi(minutePart)
		if err != nil || minute < 0 || minute > 59 {
			return TimeOfDay{}, fmt.Errorf("invalid minutes in %q", value)
		}
	}

	switch meridiem {
	case "":
		if hour < 0 || hour > 23 {
			return TimeOfDay{}, fmt.Errorf("invalid hour in %q", value)
		}
	default:
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, fmt.Errorf("invalid hour in %q", value)
		}
		if meridiem == "AM" && hour == 12 {
			hour = 0
		} else if meridiem == "PM" && hour != 12 {
			hour += 12
		}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// FormatTimeRange renders "2:00 PM - 5:00 PM", or ClosedLabel when either side is
// blank or cannot be parsed.
func FormatTimeRange(start, end string) string {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return ClosedLabel
	}
	from, err := ParseTimeOfDay(start)
	if err != nil {
		return ClosedLabel
	}
	to, err := ParseTimeOfDay(end)
	if err != nil {
		return ClosedLabel
	}
	return from.String() + " - " + to.String()
}

// WithReason appends a parenthesized reason, e.g. "CLOSED (Holiday)".
func WithReason(timeRange, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return timeRange
	}
	return fmt.Sprintf("%s (%s)", timeRange, reason)
}
