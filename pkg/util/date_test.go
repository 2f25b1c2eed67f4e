package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestParseAnyMillis(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 250e6, time.UTC)
	got, ok := ParseAny(float64(want.UnixMilli()))
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	def := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		in   interface{}
		want string
	}{
		{"2024-10-10T12:10:10+02:00", "2024-10-10T10:10:10.000Z"},
		{float64(1728555010000), "2024-10-10T10:10:10.000Z"},
		{"1728555010", "2024-10-10T10:10:10.000Z"},
		{nil, "2025-01-02T03:04:05.000Z"},
		{"not a date", "2025-01-02T03:04:05.000Z"},
		{true, "2025-01-02T03:04:05.000Z"},
	}
	for _, c := range cases {
		if got := NormalizeTimestamp(c.in, def); got != c.want {
			t.Errorf("NormalizeTimestamp(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}
