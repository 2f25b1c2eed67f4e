package util

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ISOMillis is the single textual date-time form used for every normalized timestamp.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds or milliseconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(ts)
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseAny accepts the shapes a JSON decoder produces for a timestamp field
// (string, float64, json.Number via its String form, int64).
func ParseAny(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case string:
		return ParseTime(x)
	case float64:
		return fromEpoch(x)
	case int64:
		return fromEpoch(float64(x))
	case int:
		return fromEpoch(float64(x))
	case interface{ String() string }:
		return ParseTime(x.String())
	default:
		return time.Time{}, false
	}
}

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}

// NormalizeTimestamp parses v and formats it, falling back to def.
func NormalizeTimestamp(v interface{}, def time.Time) string {
	if t, ok := ParseAny(v); ok {
		return FormatISO(t)
	}
	return FormatISO(def)
}

func fromEpoch(ts float64) (time.Time, bool) {
	if ts <= 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return time.Time{}, false
	}
	if ts > 1e11 { // ms
		return time.UnixMilli(int64(ts)), true
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)), true
}
