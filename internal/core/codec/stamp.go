package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// TimeFormat is the layout every timestamp is written with.
const TimeFormat = time.RFC3339Nano

var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Stamp is a wire timestamp. It is always written as an ISO-8601 string in
// UTC. On read it accepts ISO-8601 strings and epoch-millisecond numbers; an
// unparseable value decodes to the zero Stamp instead of failing the record.
type Stamp struct {
	time.Time
}

// NewStamp wraps t.
func NewStamp(t time.Time) Stamp {
	return Stamp{Time: t}
}

// MarshalJSON implements json.Marshaler.
func (s Stamp) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(FormatTime(s.Time))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	s.Time = time.Time{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	if t, ok := ParseTime(v); ok {
		s.Time = t
	}
	return nil
}

// FormatTime renders t the way it is persisted.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime interprets a decoded JSON value as a timestamp. Strings are
// tried against the known ISO-8601 layouts, numbers are epoch milliseconds.
func ParseTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case string:
		for _, layout := range readLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t.UTC(), true
			}
		}
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(val)).UTC(), true
	}
	return time.Time{}, false
}

// orNow returns s's time, or now when s is zero.
func orNow(s Stamp, now time.Time) time.Time {
	if s.IsZero() {
		return now
	}
	return s.Time
}

// optional returns nil for a missing or unparseable stamp.
func optional(s *Stamp) *time.Time {
	if s == nil || s.IsZero() {
		return nil
	}
	t := s.Time
	return &t
}

func optionalStamp(t *time.Time) *Stamp {
	if t == nil {
		return nil
	}
	s := NewStamp(*t)
	return &s
}
