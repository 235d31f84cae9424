package cache

import (
	"context"
	"strings"

	"yt-comment-crawler-go/internal/config"
	"yt-comment-crawler-go/internal/logger"
)

// NewFromConfig picks the crawl-marker cache named by CACHE_BACKEND. It
// returns nil for "none". A redis that cannot be reached degrades to the
// in-process cache.
func NewFromConfig(cfg config.Config) Cache {
	switch strings.ToLower(strings.TrimSpace(cfg.CacheBackend)) {
	case "none", "disabled", "off":
		return nil
	case "redis":
		rc, err := NewRedisCache(context.Background(), RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisKeyPrefix,
		})
		if err == nil {
			return rc
		}
		logger.Warn("redis cache unavailable, using memory cache", "addr", cfg.RedisAddr, "err", err)
	}
	return NewMemoryCache()
}
