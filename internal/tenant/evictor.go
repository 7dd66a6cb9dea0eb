// evictor.go houses the eviction loop for Resolver.  Every EvictInterval it
// scans the map and removes:
//
//   - mappings older than the TTL
//   - least-recently-used mappings when the map exceeds MaxEntries
//
// Each eviction updates Prometheus counters.
package tenant

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/brochure/internal/metrics"
)

// Run blocks until ctx is done, evicting on every tick.
func (r *Resolver) Run(ctx context.Context) {
	t := time.NewTicker(EvictInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.evict()
		}
	}
}

func (r *Resolver) evict() {
	now := r.now()
	var count int

	// Expiry pass.
	r.m.Range(func(key, value any) bool {
		ent := value.(*entry)
		if now.Sub(ent.loadedAt) > r.opts.TTL {
			r.drop(key)
			return true
		}
		count++
		return true
	})

	// LRU pass.
	if count <= r.opts.MaxEntries {
		return
	}
	type kv struct {
		key string
		at  int64
	}
	all := make([]kv, 0, count)
	r.m.Range(func(key, value any) bool {
		all = append(all, kv{key: key.(string), at: atomic.LoadInt64(&value.(*entry).lastSeen)})
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
	for i := 0; i < len(all)-r.opts.MaxEntries; i++ {
		r.drop(all[i].key)
	}
	zap.S().Debugw("resolver lru pressure", "entries", len(all), "max", r.opts.MaxEntries)
}

func (r *Resolver) drop(key any) {
	if _, ok := r.m.LoadAndDelete(key); ok {
		metrics.SiteEvictTotal.Inc()
		metrics.CachedSites.Dec()
	}
}
