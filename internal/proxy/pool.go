package proxy

import (
	"context"
	"errors"
	"sync"
	"time"

	"yt-comment-crawler-go/internal/logger"
)

var ErrNoProxyAvailable = errors.New("no proxy available")

const defaultExpiryMargin = 30 * time.Second

// Pool tracks the proxy the transport is currently routed through. Acquire
// keeps returning it until it expires or is marked bad, then moves on to a
// spare, asking the provider for a new batch when none are left.
type Pool struct {
	provider Provider
	batch    int
	margin   time.Duration

	mu      sync.Mutex
	spare   []Proxy
	active  *Proxy
	refills int
}

func NewPool(provider Provider, batch int) *Pool {
	if batch <= 0 {
		batch = 2
	}
	return &Pool{provider: provider, batch: batch, margin: defaultExpiryMargin}
}

// WithExpiryMargin treats proxies as expired d before their ExpiredAt.
func (p *Pool) WithExpiryMargin(d time.Duration) *Pool {
	if d > 0 {
		p.mu.Lock()
		p.margin = d
		p.mu.Unlock()
	}
	return p
}

func (p *Pool) Acquire(ctx context.Context) (Proxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != nil {
		if !p.active.IsExpired(p.margin) {
			return *p.active, nil
		}
		p.active = nil
	}

	live := p.spare[:0]
	for _, c := range p.spare {
		if !c.IsExpired(p.margin) {
			live = append(live, c)
		}
	}
	p.spare = live

	if len(p.spare) == 0 {
		batch, err := p.provider.GetProxies(ctx, p.batch)
		if err != nil {
			return Proxy{}, err
		}
		p.refills++
		p.spare = append(p.spare, batch...)
		if len(p.spare) == 0 {
			return Proxy{}, ErrNoProxyAvailable
		}
	}

	next := p.spare[0]
	p.spare = p.spare[1:]
	p.active = &next
	logger.Debug("proxy switched", "proxy", next.Addr(), "provider", p.provider.Name())
	return next, nil
}

func (p *Pool) Active() (Proxy, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return Proxy{}, false
	}
	return *p.active, true
}

// MarkBad retires the active proxy after a blocking status.
func (p *Pool) MarkBad(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return
	}
	logger.Warn("proxy retired", "proxy", p.active.Addr(), "status", status)
	p.active = nil
}

// Refills counts provider round trips.
func (p *Pool) Refills() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refills
}
