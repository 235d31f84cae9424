package cache

import (
	"context"
	"testing"
	"time"

	"yt-comment-crawler-go/internal/config"
)

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	clock := time.Unix(1000, 0)
	c.now = func() time.Time { return clock }
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "keep", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	clock = clock.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected expired entry to be gone")
	}
	if v, ok, _ := c.Get(ctx, "keep"); !ok || string(v) != "v" {
		t.Fatalf("expected persistent entry, got %q %v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryCacheWithLimit(2)
	ctx := context.Background()
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Fatalf("a missing")
	}
	_ = c.Set(ctx, "c", []byte("3"), 0)
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b evicted")
	}
	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Fatalf("expected a kept")
	}
	_ = c.Delete(ctx, "a")
	if c.Len() != 1 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	v, _, _ := c.Get(ctx, "k")
	if string(v) != "abc" {
		t.Fatalf("got %q", v)
	}
}

func TestMemoryCacheCanceledContext(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Set(ctx, "k", nil, 0); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}

func TestCrawledMarker(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	ok, err := Crawled(ctx, c, "youtube", "abc", nil)
	if err != nil || ok {
		t.Fatalf("unexpected marker: %v %v", ok, err)
	}
	if err := MarkCrawled(ctx, c, "youtube", "abc", map[string]int{"comments": 3}, time.Hour); err != nil {
		t.Fatal(err)
	}
	var got map[string]int
	ok, err = Crawled(ctx, c, "youtube", "abc", &got)
	if err != nil || !ok || got["comments"] != 3 {
		t.Fatalf("got %v %v %v", got, ok, err)
	}

	if ok, _ := Crawled(ctx, nil, "youtube", "abc", nil); ok {
		t.Fatalf("nil cache must report not crawled")
	}
}

func TestNewFromConfig(t *testing.T) {
	if c := NewFromConfig(config.Config{CacheBackend: "none"}); c != nil {
		t.Fatalf("expected nil cache")
	}
	c := NewFromConfig(config.Config{CacheBackend: "redis"})
	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("expected memory fallback without REDIS_ADDR, got %T", c)
	}
	_ = c.Close()
}
