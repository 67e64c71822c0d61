package request

import (
	"encoding/json"
	"strings"
	"time"
)

// timestampLayouts are the ISO 8601 shapes the API has been seen to emit.
// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is a date field that never fails the surrounding document. A
// value no layout accepts decodes to the zero time and keeps the raw text.
type Timestamp struct {
	time.Time
	Raw string
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = Timestamp{Raw: string(b)}
		return nil
	}
	parsed, _ := ParseTimestamp(s)
	*t = Timestamp{Time: parsed, Raw: s}
	return nil
}

// ParseTimestamp tries every known layout and reports whether one matched.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Ptr returns the parsed time, or nil when the field is absent or unreadable.
func (t *Timestamp) Ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
