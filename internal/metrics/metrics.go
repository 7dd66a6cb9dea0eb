// Package metrics holds Prometheus instruments used across the server.
// All collectors are registered with the global registry, so mounting
// promhttp.Handler() in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes used as the "outcome" label on SiteResolutionsTotal.
const (
	OutcomeMatch   = "match"
	OutcomeCached  = "cached"
	OutcomeDefault = "default"
	OutcomeFirst   = "first"
	OutcomeNone    = "none"
	OutcomeError   = "error"
)

var (
	SiteResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brochure_site_resolutions_total",
			Help: "Host to site resolutions partitioned by outcome.",
		}, []string{"outcome"})

	CachedSites = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "brochure_cached_sites",
			Help: "Number of host mappings currently held by the resolver.",
		})

	SiteEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brochure_site_evict_total",
			Help: "Cumulative number of host mappings evicted from the resolver.",
		})

	ReorderUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brochure_reorder_updates_total",
			Help: "Rows repositioned by the manual ordering service.",
		}, []string{"kind", "protocol"})

	ContactSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brochure_contact_submissions_total",
			Help: "Contact form submissions partitioned by result.",
		}, []string{"result"})

	NotificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brochure_notification_failures_total",
			Help: "Contact notifications that could not be delivered.",
		})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brochure_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(
		SiteResolutionsTotal,
		CachedSites,
		SiteEvictTotal,
		ReorderUpdatesTotal,
		ContactSubmissionsTotal,
		NotificationFailuresTotal,
		HTTPRequestDuration,
	)
}
