package datecode

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/sourcing-engine/pkg/config"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	"github.com/angelmondragon/sourcing-engine/pkg/redis"
)

func fixedNow(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func newTestClassifier(t *testing.T, year int) *Classifier {
	t.Helper()
	c, err := NewClassifier(ClassifierParams{WindowYears: 2, Now: fixedNow(year)})
	if err != nil {
		t.Fatalf("bootstrap classifier: %v", err)
	}
	return c
}

func TestClassify(t *testing.T) {
	c := newTestClassifier(t, 2026)
	ctx := context.Background()

	cases := []struct {
		raw  string
		want enums.DateCodeStatus
	}{
		{"", enums.DateCodeUnknown},
		{"   ", enums.DateCodeUnknown},
		{"N/A", enums.DateCodeUnknown},
		{"26", enums.DateCodeFresh},
		{"25", enums.DateCodeFresh},
		{"24", enums.DateCodeFresh},
		{"23", enums.DateCodeOld},
		{"18", enums.DateCodeOld},
		{"2610", enums.DateCodeFresh},
		{"2217", enums.DateCodeOld},
		{"2318", enums.DateCodeOld},
		{"22+", enums.DateCodeUnknown},
		{"25+", enums.DateCodeUnknown},
		{"2022", enums.DateCodeUnknown},
		{"2025", enums.DateCodeUnknown},
		{"27", enums.DateCodeFresh},
	}
	for _, tc := range cases {
		if got := c.Classify(ctx, tc.raw); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestClassifyCenturyWraparound(t *testing.T) {
	c := newTestClassifier(t, 2001)
	ctx := context.Background()

	if got := c.Classify(ctx, "99"); got != enums.DateCodeFresh {
		t.Fatalf("99 seen from 2001 should be fresh, got %s", got)
	}
	if got := c.Classify(ctx, "96"); got != enums.DateCodeOld {
		t.Fatalf("96 seen from 2001 should be old, got %s", got)
	}
}

type countingCache struct {
	inner *MemoryCache
	hits  int
	sets  int
}

func (c *countingCache) Get(ctx context.Context, raw string) (enums.DateCodeStatus, bool) {
	status, ok := c.inner.Get(ctx, raw)
	if ok {
		c.hits++
	}
	return status, ok
}

func (c *countingCache) Set(ctx context.Context, raw string, status enums.DateCodeStatus) {
	c.sets++
	c.inner.Set(ctx, raw, status)
}

func TestClassifyUsesCache(t *testing.T) {
	cache := &countingCache{inner: NewMemoryCache()}
	c, err := NewClassifier(ClassifierParams{Cache: cache, WindowYears: 2, Now: fixedNow(2026)})
	if err != nil {
		t.Fatalf("bootstrap classifier: %v", err)
	}
	ctx := context.Background()

	first := c.Classify(ctx, "2610")
	second := c.Classify(ctx, "2610")
	if first != second {
		t.Fatalf("cached result differs: %s vs %s", first, second)
	}
	if cache.sets != 1 {
		t.Fatalf("expected 1 cache write, got %d", cache.sets)
	}
	if cache.hits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", cache.hits)
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client, err := redis.New(context.Background(), config.RedisConfig{Address: srv.Addr()})
	if err != nil {
		t.Fatalf("bootstrap redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisCache(client)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "2610"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	cache.Set(ctx, "2610", enums.DateCodeFresh)
	status, ok := cache.Get(ctx, "2610")
	if !ok {
		t.Fatalf("expected hit after set")
	}
	if status != enums.DateCodeFresh {
		t.Fatalf("expected fresh, got %s", status)
	}
}
