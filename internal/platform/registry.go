package platform

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"yt-comment-crawler-go/internal/crawler"
)

type Factory func() crawler.Runner

type entry struct {
	name    string
	factory Factory
}

var (
	mu      sync.RWMutex
	entries = map[string]entry{}
)

// Register makes a crawler available under name and its aliases. It panics
// on a nil factory or a name that is already taken.
func Register(name string, aliases []string, factory Factory) {
	if factory == nil {
		panic("platform: factory is nil")
	}
	canonical := normalize(name)
	if canonical == "" {
		panic("platform: empty name")
	}
	keys := append([]string{name}, aliases...)
	mu.Lock()
	defer mu.Unlock()
	for _, k := range keys {
		n := normalize(k)
		if n == "" {
			continue
		}
		if _, exists := entries[n]; exists {
			panic(fmt.Sprintf("platform: duplicate register: %s", n))
		}
		entries[n] = entry{name: canonical, factory: factory}
	}
}

func New(name string) (crawler.Runner, error) {
	e, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown platform: %s (available: %s)", name, strings.Join(Names(), ", "))
	}
	return e.factory(), nil
}

// Canonical resolves an alias to the registered platform name.
func Canonical(name string) (string, bool) {
	e, ok := lookup(name)
	return e.name, ok
}

func Exists(name string) bool {
	_, ok := lookup(name)
	return ok
}

// Names lists the registered platforms without aliases.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	uniq := map[string]struct{}{}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := uniq[e.name]; ok {
			continue
		}
		uniq[e.name] = struct{}{}
		out = append(out, e.name)
	}
	sort.Strings(out)
	return out
}

func lookup(name string) (entry, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := entries[normalize(name)]
	return e, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
