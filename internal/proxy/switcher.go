package proxy

import (
	"net/http"
	"net/url"
	"sync/atomic"
)

// Switcher is plugged into http.Transport.Proxy so one long-lived transport
// can follow the pool. The zero value routes directly.
type Switcher struct {
	target atomic.Pointer[url.URL]
}

// Use routes subsequent requests through p.
func (s *Switcher) Use(p Proxy) error {
	u, err := url.Parse(p.URL())
	if err != nil {
		return err
	}
	s.target.Store(u)
	return nil
}

// Proxy has the signature of http.Transport.Proxy.
func (s *Switcher) Proxy(*http.Request) (*url.URL, error) {
	return s.target.Load(), nil
}
