package ratelimit

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestAllowBurstThenRefill(t *testing.T) {
	clk := clock.NewMock()
	l := NewWithClock(clk)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1", 3, 1) {
			t.Fatalf("request %d should pass within burst", i)
		}
	}
	if l.Allow("10.0.0.1", 3, 1) {
		t.Fatalf("burst exhausted, request should be refused")
	}
	if !l.Allow("10.0.0.2", 3, 1) {
		t.Fatalf("other keys have their own bucket")
	}

	clk.Add(time.Second)
	if !l.Allow("10.0.0.1", 3, 1) {
		t.Fatalf("one token should refill after a second")
	}
	if l.Allow("10.0.0.1", 3, 1) {
		t.Fatalf("only one token should have refilled")
	}
}

func TestReset(t *testing.T) {
	l := NewWithClock(clock.NewMock())
	l.Allow("k", 1, 0)
	if l.Allow("k", 1, 0) {
		t.Fatalf("bucket should be empty")
	}
	l.Reset("k")
	if !l.Allow("k", 1, 0) {
		t.Fatalf("reset should restore the bucket")
	}
}
