// internal/tenant/resolver.go
//
// Host → Site resolution.
//
// Context
// -------
// Every public request is served on behalf of exactly one Site, chosen from
// the Host header.  The Resolver owns that decision:
//
//  1. Normalise the host (strip port, lower-case, map "localhost" to the
//     configured alias).
//  2. Reuse a Site already bound to the context when its domain matches.
//  3. Serve a fresh cached mapping, or look the domain up with concurrent
//     callers for the same host coalesced through singleflight.
//  4. On a miss, fall back to the configured default site id, then to the
//     lowest-id site.  Nil is returned only when the table is empty.
//
// Notes
// -----
//   - Storage errors are never cached and always propagate.
//   - Only exact domain matches are cached per host.  Every unknown host
//     shares a single fallback entry.
//   - Mappings live for Options.TTL; the evictor trims expired entries and
//     applies LRU pressure above Options.MaxEntries.
package tenant

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/brochure/internal/metrics"
	"github.com/yanizio/brochure/internal/site"
)

// Static defaults.  Override through Options.
const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 1000
	EvictInterval     = time.Minute
)

// SiteStore is the read surface the Resolver needs.  *site.Repository
// satisfies it.
type SiteStore interface {
	ByDomain(ctx context.Context, domain string) (*site.Site, error)
	ByID(ctx context.Context, id uint64) (*site.Site, error)
	First(ctx context.Context) (*site.Site, error)
}

// Options tunes fallback and caching behaviour.
type Options struct {
	DefaultID      uint64
	LocalhostAlias string
	TTL            time.Duration
	MaxEntries     int
}

// Resolver is safe for concurrent use.
type Resolver struct {
	store SiteStore
	opts  Options
	sfg   singleflight.Group
	m     sync.Map // host → *entry
	now   func() time.Time
}

type entry struct {
	site     *site.Site
	loadedAt time.Time
	lastSeen int64 // UnixNano
}

// NewResolver builds a Resolver.  Call Run to start the evictor.
func NewResolver(store SiteStore, opts Options) *Resolver {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	return &Resolver{store: store, opts: opts, now: time.Now}
}

// fallbackKey holds the fallback site in the cache.  Hosts that match no
// row all share it, so junk Host headers cannot grow the map.  net/http
// rejects Host headers carrying control bytes, so no real host collides.
const fallbackKey = "\x00fallback"

// Resolve maps host to a Site following the chain described above.
func (r *Resolver) Resolve(ctx context.Context, host string) (*site.Site, error) {
	h := r.lookupHost(NormalizeHost(host))

	if bound := FromContext(ctx); bound != nil && NormalizeHost(bound.Domain) == h {
		return bound, nil
	}

	if s, ok := r.cached(h); ok {
		metrics.SiteResolutionsTotal.WithLabelValues(metrics.OutcomeCached).Inc()
		return s, nil
	}

	// The first caller's cancellation must not fail the whole flight.
	loadCtx := context.WithoutCancel(ctx)
	s, matched, err := r.flight(h, func() (*site.Site, error) {
		return r.store.ByDomain(loadCtx, h)
	})
	if err != nil || matched {
		return s, err
	}

	if s, ok := r.cached(fallbackKey); ok {
		metrics.SiteResolutionsTotal.WithLabelValues(metrics.OutcomeCached).Inc()
		return s, nil
	}
	s, _, err = r.flight(fallbackKey, func() (*site.Site, error) {
		return r.fallback(loadCtx, h)
	})
	return s, err
}

// flight runs load once per key across concurrent callers and caches a
// non-nil result under key.  matched reports whether load found a row.
func (r *Resolver) flight(key string, load func() (*site.Site, error)) (*site.Site, bool, error) {
	v, err, _ := r.sfg.Do(key, func() (any, error) {
		if s, ok := r.cached(key); ok {
			return s, nil
		}
		s, err := load()
		if err != nil {
			metrics.SiteResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
		if s != nil {
			if key != fallbackKey {
				metrics.SiteResolutionsTotal.WithLabelValues(metrics.OutcomeMatch).Inc()
			}
			r.remember(key, s)
		}
		return s, nil
	})
	if err != nil {
		return nil, false, err
	}
	s, _ := v.(*site.Site)
	return s, s != nil, nil
}

// fallback walks default id → lowest id.  host is only logged.
func (r *Resolver) fallback(ctx context.Context, host string) (*site.Site, error) {
	if r.opts.DefaultID != 0 {
		s, err := r.store.ByID(ctx, r.opts.DefaultID)
		if err != nil {
			return nil, err
		}
		if s != nil {
			zap.S().Debugw("host fell back to default site", "host", host, "site_id", s.ID)
			metrics.SiteResolutionsTotal.WithLabelValues(metrics.OutcomeDefault).Inc()
			return s, nil
		}
		zap.S().Warnw("configured default site missing", "site_id", r.opts.DefaultID)
	}

	s, err := r.store.First(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		metrics.SiteResolutionsTotal.WithLabelValues(metrics.OutcomeNone).Inc()
		return nil, nil
	}
	metrics.SiteResolutionsTotal.WithLabelValues(metrics.OutcomeFirst).Inc()
	return s, nil
}

// lookupHost maps the literal "localhost" to the configured alias so a dev
// instance can answer as any real site.
func (r *Resolver) lookupHost(h string) string {
	if h == "localhost" && r.opts.LocalhostAlias != "" {
		return NormalizeHost(r.opts.LocalhostAlias)
	}
	return h
}

/*──────────────────────────── cache access ────────────────────────────────*/

func (r *Resolver) cached(host string) (*site.Site, bool) {
	v, ok := r.m.Load(host)
	if !ok {
		return nil, false
	}
	ent := v.(*entry)
	now := r.now()
	if now.Sub(ent.loadedAt) > r.opts.TTL {
		return nil, false
	}
	atomic.StoreInt64(&ent.lastSeen, now.UnixNano())
	return ent.site, true
}

func (r *Resolver) remember(host string, s *site.Site) {
	now := r.now()
	if _, loaded := r.m.Swap(host, &entry{site: s, loadedAt: now, lastSeen: now.UnixNano()}); !loaded {
		metrics.CachedSites.Inc()
	}
}

// NormalizeHost strips any :port suffix (IPv6 brackets included), a
// trailing dot, and lower-cases the result.
func NormalizeHost(h string) string {
	h = strings.TrimSpace(h)
	if strings.HasPrefix(h, "[") {
		if i := strings.IndexByte(h, ']'); i != -1 {
			h = h[1:i]
		}
	} else if i := strings.LastIndexByte(h, ':'); i != -1 && strings.Count(h, ":") == 1 {
		h = h[:i]
	}
	return strings.ToLower(strings.TrimSuffix(h, "."))
}
