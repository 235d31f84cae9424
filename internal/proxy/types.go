package proxy

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"time"
)

type ProviderName string

const ProviderStatic ProviderName = "static"

// Provider supplies batches of proxies to a Pool.
type Provider interface {
	Name() ProviderName
	GetProxies(ctx context.Context, num int) ([]Proxy, error)
}

type Proxy struct {
	IP       string
	Port     int
	User     string
	Password string
	// Protocol is the URL scheme; empty means http.
	Protocol string
	// ExpiredAt is zero for proxies that never expire.
	ExpiredAt time.Time
}

// IsExpired reports whether p expires within margin from now.
func (p Proxy) IsExpired(margin time.Duration) bool {
	return !p.ExpiredAt.IsZero() && !time.Now().Add(margin).Before(p.ExpiredAt)
}

func (p Proxy) Addr() string {
	return net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}

func (p Proxy) scheme() string {
	if p.Protocol == "" {
		return "http"
	}
	return p.Protocol
}

// URL includes credentials, as http.Transport expects them.
func (p Proxy) URL() string {
	u := url.URL{Scheme: p.scheme(), Host: p.Addr()}
	if p.User != "" || p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u.String()
}

// ServerURL leaves credentials out; browsers take them separately.
func (p Proxy) ServerURL() string {
	return (&url.URL{Scheme: p.scheme(), Host: p.Addr()}).String()
}
