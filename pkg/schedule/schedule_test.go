package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Monday", "Monday"},
		{"monday", "Monday"},
		{" FRIDAY ", "Friday"},
		{"wEdNeSdAy", "Wednesday"},
	}
	for _, tt := range tests {
		t.Run("should normalize "+tt.in, func(t *testing.T) {
			got, err := NormalizeDay(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("should reject weekend and unknown days", func(t *testing.T) {
		for _, day := range []string{"Saturday", "Sunday", "Mon", ""} {
			_, err := NormalizeDay(day)
			assert.ErrorIs(t, err, ErrInvalidDay, day)
		}
	})
}

func TestDecodeDocument(t *testing.T) {
	t.Run("should read a current document", func(t *testing.T) {
		// given
		data := []byte(`{
			"default": {"Monday": "2:00 PM - 5:00 PM", "Tuesday": "", "Wednesday": "", "Thursday": "", "Friday": ""},
			"overrides": {"09/01": {"Monday": "CLOSED (Labor Day)"}}
		}`)

		// when
		doc, err := DecodeDocument(data)

		// then
		require.NoError(t, err)
		assert.Equal(t, "2:00 PM - 5:00 PM", doc.Default["Monday"])
		assert.Equal(t, map[string]string{"Monday": "CLOSED (Labor Day)"}, doc.Overrides["09/01"])
	})

	t.Run("should read a legacy flat document as the default schedule", func(t *testing.T) {
		// given
		data := []byte(`{"Monday": "2:00 PM - 5:00 PM", "Friday": "10:00 AM - 11:00 AM"}`)

		// when
		doc, err := DecodeDocument(data)

		// then
		require.NoError(t, err)
		assert.Equal(t, DefaultSchedule{
			"Monday":    "2:00 PM - 5:00 PM",
			"Tuesday":   "",
			"Wednesday": "",
			"Thursday":  "",
			"Friday":    "10:00 AM - 11:00 AM",
		}, doc.Default)
		assert.Empty(t, doc.Overrides)
	})

	t.Run("should drop unknown days, non-string values and bad date keys", func(t *testing.T) {
		// given
		data := []byte(`{
			"default": {"Monday": 5, "Saturday": "x", "Tuesday": "ok"},
			"overrides": {
				"9/2": {"Tuesday": "normalized"},
				"13/01": {"Monday": "bad date"},
				"09/03": {"Sunday": "only unknown"},
				"09/04": "not an object"
			}
		}`)

		// when
		doc, err := DecodeDocument(data)

		// then
		require.NoError(t, err)
		assert.Equal(t, "", doc.Default["Monday"])
		assert.Equal(t, "ok", doc.Default["Tuesday"])
		assert.NotContains(t, doc.Default, "Saturday")
		assert.Equal(t, Overrides{"09/02": {"Tuesday": "normalized"}}, doc.Overrides)
	})

	t.Run("should return the empty document and an error for garbage", func(t *testing.T) {
		// when
		doc, err := DecodeDocument([]byte("not json at all"))

		// then
		assert.Error(t, err)
		assert.Equal(t, NewDocument(), doc)
	})
}

func TestDocument_Clone(t *testing.T) {
	t.Run("should not share maps with the original", func(t *testing.T) {
		// given
		doc := NewDocument()
		doc.Overrides["09/01"] = map[string]string{"Monday": "x"}

		// when
		clone := doc.Clone()
		clone.Default["Monday"] = "changed"
		clone.Overrides["09/01"]["Monday"] = "changed"

		// then
		assert.Equal(t, "", doc.Default["Monday"])
		assert.Equal(t, "x", doc.Overrides["09/01"]["Monday"])
	})
}

func TestDateKeys(t *testing.T) {
	t.Run("should normalize date keys", func(t *testing.T) {
		for in, want := range map[string]string{"9/6": "09/06", "09/06": "09/06", " 12/31 ": "12/31", "2/29": "02/29"} {
			got, err := NormalizeDateKey(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, got)
		}
	})

	t.Run("should reject malformed and impossible dates", func(t *testing.T) {
		for _, in := range []string{"", "09", "09-06", "a/b", "0/10", "13/01", "02/30", "1/2/3"} {
			_, err := NormalizeDateKey(in)
			assert.ErrorIs(t, err, ErrInvalidDate, in)
		}
	})

	t.Run("should reject 02/29 in a non leap year", func(t *testing.T) {
		_, err := ParseDateKey("02/29", 2025, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("should find the Monday of a week", func(t *testing.T) {
		monday := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
		for offset := 0; offset < 7; offset++ {
			date := monday.AddDate(0, 0, offset).Add(13 * time.Hour)
			assert.Equal(t, monday, WeekStart(date), date.Weekday().String())
		}
	})

	t.Run("should format a date as its key", func(t *testing.T) {
		assert.Equal(t, "01/05", DateKey(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)))
	})
}
