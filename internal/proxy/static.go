package proxy

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
)

// StaticProvider rotates through a fixed proxy list taken from IP_PROXY_LIST
// or, when that is empty, from IP_PROXY_FILE. Accepted entry forms:
//
//	host:port
//	host:port:user:pass
//	scheme://[user:pass@]host:port
//
// Successive GetProxies calls continue where the previous batch ended, so an
// invalidated proxy is not handed straight back by the next refresh.
type StaticProvider struct {
	List string
	File string

	once    sync.Once
	loadErr error
	entries []Proxy

	mu     sync.Mutex
	cursor int
}

func (p *StaticProvider) Name() ProviderName {
	return ProviderStatic
}

func (p *StaticProvider) GetProxies(ctx context.Context, num int) ([]Proxy, error) {
	p.once.Do(func() { p.entries, p.loadErr = p.load() })
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	if num <= 0 {
		num = 1
	}
	if num > len(p.entries) {
		num = len(p.entries)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	batch := make([]Proxy, num)
	for i := range batch {
		batch[i] = p.entries[(p.cursor+i)%len(p.entries)]
	}
	p.cursor = (p.cursor + num) % len(p.entries)
	return batch, nil
}

func (p *StaticProvider) load() ([]Proxy, error) {
	src := p.List
	if strings.TrimSpace(src) == "" && strings.TrimSpace(p.File) != "" {
		b, err := os.ReadFile(p.File)
		if err != nil {
			return nil, fmt.Errorf("read proxy file: %w", err)
		}
		src = string(b)
	}

	seen := make(map[string]bool)
	var out []Proxy
	for _, tok := range tokenize(src) {
		pr, err := ParseEntry(tok)
		if err != nil {
			continue
		}
		if key := pr.URL(); !seen[key] {
			seen[key] = true
			out = append(out, pr)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable entry in IP_PROXY_LIST / IP_PROXY_FILE", ErrNoProxyAvailable)
	}
	return out, nil
}

// tokenize splits on commas, semicolons and line breaks and drops "#" comments.
func tokenize(src string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(src, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, tok := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' }) {
			if tok = strings.TrimSpace(tok); tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// ParseEntry reads a single proxy list entry.
func ParseEntry(raw string) (Proxy, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		if parts := strings.Split(raw, ":"); len(parts) == 4 {
			raw = "http://" + url.UserPassword(parts[2], parts[3]).String() + "@" + parts[0] + ":" + parts[1]
		} else {
			raw = "http://" + raw
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Proxy{}, err
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return Proxy{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Proxy{}, fmt.Errorf("bad proxy port %q", portStr)
	}
	pr := Proxy{IP: host, Port: port, Protocol: strings.ToLower(u.Scheme)}
	if u.User != nil {
		pr.User = u.User.Username()
		pr.Password, _ = u.User.Password()
	}
	return pr, nil
}
