package util

import (
	"testing"
	"time"
)

func TestParseDurationDefault(t *testing.T) {
	if got := ParseDurationDefault("15s", time.Second); got != 15*time.Second {
		t.Fatalf("unexpected %v", got)
	}
	if got := ParseDurationDefault("2500", time.Second); got != 2500*time.Millisecond {
		t.Fatalf("unexpected %v", got)
	}
	if got := ParseDurationDefault("junk", time.Second); got != time.Second {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, b,,c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected %v", got)
	}
}
