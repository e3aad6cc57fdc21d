package drift

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Observations is an immutable snapshot of the aggregated hostnames,
// sorted per category.
type Observations map[Category][]string

// Aggregator accumulates unique hostnames per category over one browsing
// session. Adds may arrive concurrently from response handlers completing
// out of order; they are commutative and idempotent so no ordering is
// required between them.
type Aggregator struct {
	mu     sync.Mutex
	sets   map[Category]map[string]struct{}
	logger *zap.SugaredLogger
}

// NewAggregator returns an empty aggregator. Call it at session start;
// sets never shrink during a session.
func NewAggregator(logger *zap.SugaredLogger) *Aggregator {
	sets := make(map[Category]map[string]struct{}, len(Categories()))
	for _, c := range Categories() {
		sets[c] = make(map[string]struct{})
	}
	return &Aggregator{sets: sets, logger: logger}
}

// Record adds hostname to the category's set. Re-adding an existing
// hostname is a no-op; only the first add is logged.
func (a *Aggregator) Record(category Category, hostname string) {
	if hostname == "" {
		return
	}
	a.mu.Lock()
	set, ok := a.sets[category]
	if !ok {
		a.mu.Unlock()
		return
	}
	if _, dup := set[hostname]; dup {
		a.mu.Unlock()
		return
	}
	set[hostname] = struct{}{}
	a.mu.Unlock()

	if a.logger != nil {
		a.logger.Infow("observed host", "category", string(category), "host", hostname)
	}
}

// RecordURL extracts the authority component from rawURL and records it.
func (a *Aggregator) RecordURL(category Category, rawURL string) error {
	host, err := HostFromURL(rawURL)
	if err != nil {
		return err
	}
	a.Record(category, host)
	return nil
}

// Snapshot returns the current sets, each sorted lexicographically.
func (a *Aggregator) Snapshot() Observations {
	a.mu.Lock()
	defer a.mu.Unlock()

	obs := make(Observations, len(a.sets))
	for c, set := range a.sets {
		hosts := make([]string, 0, len(set))
		for h := range set {
			hosts = append(hosts, h)
		}
		sort.Strings(hosts)
		obs[c] = hosts
	}
	return obs
}

// HostFromURL returns the authority (host plus port, when present) of a
// resource URL. Worker scripts frequently arrive as blob: URLs wrapping
// the real origin; the blob scheme is stripped before parsing.
func HostFromURL(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	raw = strings.TrimPrefix(raw, "blob:")
	if raw == "" {
		return "", fmt.Errorf("empty resource url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse resource url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("resource url %q has no host", rawURL)
	}
	return u.Host, nil
}
