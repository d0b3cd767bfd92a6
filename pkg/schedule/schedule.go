package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDay = errors.New("invalid day")

// Weekdays lists the days the schedule covers, in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// EmptyTimePlaceholder is what consumers render for a day with no hours.
const EmptyTimePlaceholder = "—"

// DefaultSchedule maps a weekday name to its time range. An empty string means no hours.
type DefaultSchedule map[string]string

// Overrides maps a MM/DD date key to the weekdays it overrides.
type Overrides map[string]map[string]string

// Document is the persisted aggregate and the only unit of storage.
type Document struct {
	Default   DefaultSchedule `json:"default"`
	Overrides Overrides       `json:"overrides"`
}

// EffectiveDay is the resolved time for one weekday of a concrete week.
type EffectiveDay struct {
	Day        string
	Date       time.Time
	DateKey    string
	Time       string
	Overridden bool
}

// DisplayTime returns the time range or the placeholder when there are no hours.
func (d EffectiveDay) DisplayTime() string {
	if d.Time == "" {
		return EmptyTimePlaceholder
	}
	return d.Time
}

// NewDocument returns a document with every weekday unset and no overrides.
func NewDocument() Document {
	def := make(DefaultSchedule, len(Weekdays))
	for _, day := range Weekdays {
		def[day] = ""
	}
	return Document{Default: def, Overrides: Overrides{}}
}

// Clone returns a deep copy so callers can never mutate the stored document.
func (d Document) Clone() Document {
	clone := Document{
		Default:   make(DefaultSchedule, len(d.Default)),
		Overrides: make(Overrides, len(d.Overrides)),
	}
	for day, value := range d.Default {
		clone.Default[day] = value
	}
	for key, days := range d.Overrides {
		copied := make(map[string]string, len(days))
		for day, value := range days {
			copied[day] = value
		}
		clone.Overrides[key] = copied
	}
	return clone
}

// NormalizeDay trims and capitalizes a day name and checks it against Weekdays.
func NormalizeDay(day string) (string, error) {
	trimmed := strings.TrimSpace(day)
	for _, weekday := range Weekdays {
		if strings.EqualFold(trimmed, weekday) {
			return weekday, nil
		}
	}
	return "", fmt.Errorf("%w: %q, expected one of %s", ErrInvalidDay, day, strings.Join(Weekdays, ", "))
}

// normalizeDays validates every key of updates up front so a bad entry rejects the whole batch.
func normalizeDays(updates map[string]string) (map[string]string, error) {
	normalized := make(map[string]string, len(updates))
	for day, value := range updates {
		name, err := NormalizeDay(day)
		if err != nil {
			return nil, err
		}
		normalized[name] = value
	}
	return normalized, nil
}

// DecodeDocument parses a stored document. Legacy flat documents ({"Monday": "..."}) are
// read as the default schedule; unknown days and non-string values are dropped.
func DecodeDocument(data []byte) (Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewDocument(), err
	}
	return coerceDocument(raw), nil
}

func coerceDocument(raw map[string]any) Document {
	doc := NewDocument()

	def, hasDefault := raw["default"].(map[string]any)
	overrides, hasOverrides := raw["overrides"].(map[string]any)
	if !hasDefault || !hasOverrides {
		copyKnownDays(doc.Default, raw)
		return doc
	}

	copyKnownDays(doc.Default, def)
	for key, value := range overrides {
		days, ok := value.(map[string]any)
		if !ok {
			continue
		}
		dateKey, err := NormalizeDateKey(key)
		if err != nil {
			continue
		}
		bucket := make(map[string]string, len(days))
		copyKnownDays(bucket, days)
		if len(bucket) == 0 {
			continue
		}
		if existing, ok := doc.Overrides[dateKey]; ok {
			for day, t := range bucket {
				existing[day] = t
			}
			continue
		}
		doc.Overrides[dateKey] = bucket
	}
	return doc
}

func copyKnownDays(dst map[string]string, src map[string]any) {
	for _, day := range Weekdays {
		if value, ok := src[day].(string); ok {
			dst[day] = value
		}
	}
}
