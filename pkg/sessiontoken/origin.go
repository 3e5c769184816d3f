package sessiontoken

import (
	"strings"
	"sync"
)

// Allowlist matches request origins against exact entries and wildcard
// subdomain patterns ("https://*.preview.example.app"). The entry set can
// be swapped at runtime, which backs config hot reload.
type Allowlist struct {
	mu       sync.RWMutex
	exact    map[string]struct{}
	patterns []wildcardPattern
}

type wildcardPattern struct {
	scheme string
	// hostSuffix includes the leading dot, e.g. ".preview.example.app".
	// A bare "*.example.app" pattern does not match "example.app" itself.
	hostSuffix string
}

func NewAllowlist(origins []string) *Allowlist {
	a := &Allowlist{}
	a.SetOrigins(origins)
	return a
}

// SetOrigins replaces the full entry set.
func (a *Allowlist) SetOrigins(origins []string) {
	exact := make(map[string]struct{})
	var patterns []wildcardPattern

	for _, origin := range origins {
		origin = NormalizeOrigin(origin)
		if origin == "" {
			continue
		}
		scheme, host, ok := strings.Cut(origin, "://")
		if ok && strings.HasPrefix(host, "*.") {
			patterns = append(patterns, wildcardPattern{
				scheme:     scheme,
				hostSuffix: host[1:],
			})
			continue
		}
		exact[origin] = struct{}{}
	}

	a.mu.Lock()
	a.exact = exact
	a.patterns = patterns
	a.mu.Unlock()
}

// Match reports whether origin is allow-listed.
func (a *Allowlist) Match(origin string) bool {
	origin = NormalizeOrigin(origin)
	if origin == "" {
		return false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.exact[origin]; ok {
		return true
	}

	scheme, host, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	for _, p := range a.patterns {
		if p.scheme == scheme && strings.HasSuffix(host, p.hostSuffix) {
			return true
		}
	}
	return false
}

// NormalizeOrigin lowercases an origin and strips any trailing slash, so
// equality checks compare exact scheme+host+port values.
func NormalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
