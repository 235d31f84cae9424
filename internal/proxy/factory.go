package proxy

import (
	"fmt"
	"strings"

	"yt-comment-crawler-go/internal/config"
)

func NewProvider(cfg config.Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.IPProxyProviderName))
	switch ProviderName(name) {
	case ProviderStatic, "":
		return &StaticProvider{List: cfg.IPProxyList, File: cfg.IPProxyFile}, nil
	default:
		return nil, fmt.Errorf("unknown proxy provider: %s", name)
	}
}

// PoolFromConfig returns nil when proxies are disabled.
func PoolFromConfig(cfg config.Config) (*Pool, error) {
	if !cfg.EnableIPProxy {
		return nil, nil
	}
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewPool(p, cfg.IPProxyPoolCount), nil
}
