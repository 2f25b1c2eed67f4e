package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

type sessionDoc struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func TestMemoryCacheRoundTripJSON(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "adminSession", sessionDoc{Email: "a@b.c", Token: "t1"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got sessionDoc
	if err := mc.Get(ctx, "adminSession", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "a@b.c" || got.Token != "t1" {
		t.Fatalf("unexpected value: %+v", got)
	}

	var raw string
	if err := mc.Get(ctx, "adminSession", &raw); err != nil {
		t.Fatalf("get raw: %v", err)
	}
	if raw != `{"email":"a@b.c","token":"t1"}` {
		t.Fatalf("unexpected raw value: %s", raw)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	clk := clock.NewMock()
	mc := NewMemoryCache(WithMemoryClock(clk))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "k", "v", time.Minute)
	if ok, _ := mc.Exists(ctx, "k"); !ok {
		t.Fatalf("expected key to exist")
	}

	clk.Add(time.Minute)
	var v string
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
}

func TestMemoryCacheExpireAndDelete(t *testing.T) {
	clk := clock.NewMock()
	mc := NewMemoryCache(WithMemoryClock(clk))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "k", "v", 0)
	if ok, _ := mc.Expire(ctx, "k", time.Second); !ok {
		t.Fatalf("expire should report existing key")
	}
	if ok, _ := mc.Expire(ctx, "missing", time.Second); ok {
		t.Fatalf("expire should report missing key")
	}

	_ = mc.Delete(ctx, "k")
	if ok, _ := mc.Exists(ctx, "k"); ok {
		t.Fatalf("key should be gone after delete")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	clk := clock.NewMock()
	mc := NewMemoryCache(WithMemoryClock(clk), WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", 0)
	clk.Add(time.Second)
	_ = mc.Set(ctx, "b", "2", 0)
	clk.Add(time.Second)
	var v string
	_ = mc.Get(ctx, "a", &v)
	clk.Add(time.Second)
	_ = mc.Set(ctx, "c", "3", 0)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatalf("a and c should remain")
	}
}
