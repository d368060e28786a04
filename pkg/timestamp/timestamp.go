// Package timestamp provides standardized Unix timestamp handling utilities.
//
// This package uses int64 milliseconds as the canonical timestamp format to
// eliminate timestamp parsing bugs and provide consistent behavior across the
// codebase. All timestamps are stored as milliseconds since Unix epoch (UTC).
//
// Zero Value Semantics:
//   - A timestamp value of 0 means "not set" or "unknown"
//   - Functions handle zero values gracefully, returning appropriate defaults
package timestamp

import (
	"strconv"
	"time"
)

// Now returns the current time as Unix milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// ToUnixMs converts a time.Time to Unix milliseconds.
func ToUnixMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMs converts Unix milliseconds to time.Time.
// Returns zero time if timestamp is 0.
func FromUnixMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Format renders a timestamp as RFC3339 with millisecond precision.
// Returns an empty string for the zero timestamp.
func Format(ms int64) string {
	if ms == 0 {
		return ""
	}
	return FromUnixMs(ms).Format(time.RFC3339Nano)
}

// Parse converts various timestamp representations to Unix milliseconds.
//
// Accepted inputs: int64/int/float64 epoch values (seconds or milliseconds,
// disambiguated by magnitude), RFC3339 strings, and numeric strings.
// Malformed input yields 0 ("unknown") rather than an error; callers that
// compare against historical windows skip entries with unknown timestamps.
func Parse(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int64:
		return normalizeEpoch(t)
	case int:
		return normalizeEpoch(int64(t))
	case float64:
		return normalizeEpoch(int64(t))
	case time.Time:
		return ToUnixMs(t)
	case string:
		return parseString(t)
	default:
		return 0
	}
}

func parseString(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return normalizeEpoch(n)
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ToUnixMs(t)
		}
	}
	return 0
}

// normalizeEpoch treats values below 1e12 as seconds and converts to ms.
// The cutoff corresponds to Sep 2001 in milliseconds and year 33658 in
// seconds, so any realistic timestamp disambiguates cleanly.
func normalizeEpoch(n int64) int64 {
	if n <= 0 {
		return 0
	}
	if n < 1_000_000_000_000 {
		return n * 1000
	}
	return n
}
