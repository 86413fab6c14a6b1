// Package epoch normalizes the two time representations report callers use,
// epoch milliseconds and time.Time, into a single UTC instant.
package epoch

import (
	"encoding/json"
	"time"
)

// Instant is an optional point in time. The zero value is unset.
type Instant struct {
	t   time.Time
	set bool
}

// Millis returns the instant ms milliseconds after the Unix epoch
func Millis(ms int64) Instant {
	return Instant{t: time.UnixMilli(ms).UTC(), set: true}
}

// At returns the instant t, truncated to millisecond precision to match
// what the store can represent
func At(t time.Time) Instant {
	return Instant{t: t.UTC().Truncate(time.Millisecond), set: true}
}

// IsSet reports whether the instant carries a value
func (i Instant) IsSet() bool { return i.set }

// Time returns the instant in UTC; the zero time when unset
func (i Instant) Time() time.Time { return i.t }

// UnixMilli returns the instant as epoch milliseconds; 0 when unset
func (i Instant) UnixMilli() int64 {
	if !i.set {
		return 0
	}
	return i.t.UnixMilli()
}

// Before reports whether i is strictly earlier than j. Both must be set.
func (i Instant) Before(j Instant) bool { return i.t.Before(j.t) }

// Date returns year, month and day of the instant in UTC
func (i Instant) Date() (year int, month int, day int) {
	y, m, d := i.t.Date()
	return y, int(m), d
}

// String formats the instant as RFC 3339 with milliseconds, or "unset"
func (i Instant) String() string {
	if !i.set {
		return "unset"
	}
	return i.t.Format("2006-01-02T15:04:05.000Z07:00")
}

// MarshalJSON encodes the instant as epoch milliseconds, or null when unset.
// Used when instants participate in cache keys.
func (i Instant) MarshalJSON() ([]byte, error) {
	if !i.set {
		return []byte("null"), nil
	}
	return json.Marshal(i.t.UnixMilli())
}

// UnmarshalJSON accepts epoch milliseconds, an RFC 3339 string, or null
func (i *Instant) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Instant{}
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		*i = Millis(ms)
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	*i = At(t)
	return nil
}

// Range is a pair of optional bounds
type Range struct {
	Min Instant
	Max Instant
}

// Ordered returns the range with bounds swapped when both are set and Max
// precedes Min
func (r Range) Ordered() Range {
	if r.Min.IsSet() && r.Max.IsSet() && r.Max.Before(r.Min) {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

// Empty reports whether neither bound is set
func (r Range) Empty() bool {
	return !r.Min.IsSet() && !r.Max.IsSet()
}
