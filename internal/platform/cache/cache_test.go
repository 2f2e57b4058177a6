package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type series struct {
	Name   string
	Days   []time.Time
	Totals []float64
}

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "epimetrics-test", time.Minute), mr
}

func TestRememberHitAndMiss(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	var calls atomic.Int32
	compute := func(context.Context) (series, error) {
		calls.Add(1)
		return series{Name: "daily", Days: []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, Totals: []float64{3}}, nil
	}
	req := map[string]any{"dataset": "cases", "location": []string{"Dublin"}}

	first, err := Remember(ctx, c, "daily", req, compute)
	if err != nil || first.Name != "daily" {
		t.Fatalf("first = %+v, %v", first, err)
	}
	second, err := Remember(ctx, c, "daily", req, compute)
	if err != nil || len(second.Totals) != 1 || second.Totals[0] != 3 || !second.Days[0].Equal(first.Days[0]) {
		t.Fatalf("second = %+v, %v", second, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("compute ran %d times, want 1", calls.Load())
	}

	key, _ := Key("daily", req)
	if ttl := mr.TTL("epimetrics-test:" + key); ttl != time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}
}

func TestRememberBypassesBrokenRedis(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	got, err := Remember(context.Background(), c, "views", "req", func(context.Context) (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Fatalf("got %d, %v", got, err)
	}
}

func TestRememberPropagatesComputeError(t *testing.T) {
	c, mr := newCache(t)
	boom := errors.New("storage down")
	_, err := Remember(context.Background(), c, "views", "req", func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("failed computation must not be cached: %v", keys)
	}
}

func TestDisabledCache(t *testing.T) {
	var c *Cache
	if c.Enabled() {
		t.Fatalf("nil cache must be disabled")
	}
	got, err := Remember(context.Background(), c, "daily", 1, func(context.Context) (string, error) { return "x", nil })
	if err != nil || got != "x" {
		t.Fatalf("got %q, %v", got, err)
	}
	if found, err := New(nil, "p", 0).Get(context.Background(), "k", &got); found || err != nil {
		t.Fatalf("disabled Get = %v, %v", found, err)
	}
}

func TestKeyStable(t *testing.T) {
	a, _ := Key("daily", []string{"a", "b"})
	b, _ := Key("daily", []string{"a", "b"})
	c, _ := Key("daily", []string{"b", "a"})
	if a != b || a == c {
		t.Fatalf("keys: %s %s %s", a, b, c)
	}
}
