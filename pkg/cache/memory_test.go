package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v" {
		t.Fatalf("got %q, want %q", got, "v")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	if _, err := mc.Get(context.Background(), "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := mc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
}

func TestMemoryCacheDeleteAndExists(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err := mc.Exists(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}
	if err := mc.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = mc.Exists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("exists after delete = %v, %v", ok, err)
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", "1", time.Minute); err != nil {
		t.Fatalf("set a: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Set(ctx, "b", "2", time.Minute); err != nil {
		t.Fatalf("set b: %v", err)
	}
	time.Sleep(time.Millisecond)

	// Touch "a" so "b" becomes the LRU victim.
	if _, err := mc.Get(ctx, "a"); err != nil {
		t.Fatalf("get a: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Set(ctx, "c", "3", time.Minute); err != nil {
		t.Fatalf("set c: %v", err)
	}

	if _, err := mc.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if _, err := mc.Get(ctx, "a"); err != nil {
		t.Fatalf("a must survive: %v", err)
	}
}

func TestTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}

	in := payload{Name: "AAA", Score: 0.75}
	if err := SetTyped(ctx, mc, "p", in, time.Minute); err != nil {
		t.Fatalf("set typed: %v", err)
	}
	out, err := GetTyped[payload](ctx, mc, "p")
	if err != nil {
		t.Fatalf("get typed: %v", err)
	}
	if out != in {
		t.Fatalf("round trip: got %+v, want %+v", out, in)
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	key := GenerateKeyWithParams("selection", 100, "BTC", 0.4)
	if key != "selection:100:BTC:0.4" {
		t.Fatalf("key = %q", key)
	}
}
