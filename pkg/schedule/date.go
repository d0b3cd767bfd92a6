package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("date must be in MM/DD format")

const dateKeyLayout = "01/02"

// NormalizeDateKey turns "9/6" or "09/06" into "09/06". The check is year agnostic,
// so 02/29 is accepted.
func NormalizeDateKey(key string) (string, error) {
	month, day, err := splitDateKey(key)
	if err != nil {
		return "", err
	}
	// 2000 is a leap year
	if _, err := dateIn(2000, month, day, time.UTC); err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d/%02d", month, day), nil
}

// ParseDateKey resolves a MM/DD key to a date in the given year and location.
func ParseDateKey(key string, year int, loc *time.Location) (time.Time, error) {
	month, day, err := splitDateKey(key)
	if err != nil {
		return time.Time{}, err
	}
	return dateIn(year, month, day, loc)
}

// DateKey formats a date as its MM/DD storage key.
func DateKey(date time.Time) string {
	return date.Format(dateKeyLayout)
}

// WeekStart returns midnight on the Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	delta := (int(date.Weekday()) - int(time.Monday) + 7) % 7
	y, m, d := date.AddDate(0, 0, -delta).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

func splitDateKey(key string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(key), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return month, day, nil
}

func dateIn(year, month, day int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow (02/30 -> 03/02), reject those
	if date.Month() != time.Month(month) || date.Day() != day || month < 1 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: %02d/%02d does not exist in %d", ErrInvalidDate, month, day, year)
	}
	return date, nil
}
