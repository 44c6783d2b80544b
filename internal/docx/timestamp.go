package docx

import (
	"encoding/json"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05"

// Timestamp is a date property that may not have parsed. Raw always holds the
// source text; Time is zero when the text did not match the expected layout.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// ParseTimestamp strips any fractional seconds and zone suffix, then parses the
// remainder as UTC. It never fails: unparseable input is kept verbatim in Raw.
func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	ts := Timestamp{Raw: raw}
	if raw == "" {
		return ts
	}
	if t, err := time.ParseInLocation(timestampLayout, trimTimestampSuffix(raw), time.UTC); err == nil {
		ts.Time = t
	}
	return ts
}

func trimTimestampSuffix(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "Z")
	// A zone offset can only start after the time-of-day separator.
	if t := strings.IndexByte(s, 'T'); t >= 0 {
		if i := strings.IndexAny(s[t:], "+-"); i >= 0 {
			s = s[:t+i]
		}
	}
	return s
}

func (t Timestamp) Resolved() bool {
	return !t.Time.IsZero()
}

func (t Timestamp) IsZero() bool {
	return t.Raw == "" && t.Time.IsZero()
}

func (t Timestamp) String() string {
	if t.Resolved() {
		return t.Time.Format(time.RFC3339)
	}
	return t.Raw
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}
