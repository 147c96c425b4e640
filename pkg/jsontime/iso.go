// Package jsontime provides JSON-serializable time types.
package jsontime

import (
	"encoding/json"
	"fmt"
	"time"
)

// isoNoZone matches ISO-8601 timestamps that carry no zone offset, as
// emitted by services that serialize naive local datetimes.
const isoNoZone = "2006-01-02T15:04:05.999999999"

// ISO is a time.Time that serializes to/from an ISO-8601 string in JSON.
// When unmarshaling it accepts RFC 3339 as well as zone-less timestamps,
// which are interpreted as UTC.
type ISO time.Time

// MarshalJSON implements json.Marshaler.
func (t ISO) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ISO) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = ISO(time.Time{})
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = ISO(parsed)
		return nil
	}
	parsed, err := time.Parse(isoNoZone, s)
	if err != nil {
		return fmt.Errorf("jsontime: invalid ISO timestamp %q", s)
	}
	*t = ISO(parsed.UTC())
	return nil
}

// Time returns the underlying time.Time value.
func (t ISO) Time() time.Time {
	return time.Time(t)
}

// IsZero reports whether the timestamp is the zero time.
func (t ISO) IsZero() bool {
	return time.Time(t).IsZero()
}

// NowISO returns the current time as an ISO.
func NowISO() ISO {
	return ISO(time.Now())
}
