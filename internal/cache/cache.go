package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte store with per-key expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func crawledKey(platform, videoID string) string {
	return "crawled:" + platform + ":" + videoID
}

// MarkCrawled records that videoID finished crawling, with v as the payload.
// A nil cache is a no-op.
func MarkCrawled(ctx context.Context, c Cache, platform, videoID string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, crawledKey(platform, videoID), b, ttl)
}

// Crawled reports whether videoID was marked and decodes the payload into
// out when out is not nil.
func Crawled(ctx context.Context, c Cache, platform, videoID string, out any) (bool, error) {
	if c == nil {
		return false, nil
	}
	b, ok, err := c.Get(ctx, crawledKey(platform, videoID))
	if err != nil || !ok {
		return false, err
	}
	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return true, err
		}
	}
	return true, nil
}
