// Package metrics collects and exposes Prometheus counters for the core flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// Collector counts the events the match pipeline produces.
type Collector struct {
	swipesRecorded    *prometheus.CounterVec
	matchesCreated    *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	sessionsSwept     prometheus.Counter
}

// NewCollector registers the counters on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		swipesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anymatch_swipes_recorded_total",
			Help: "Swipes recorded, by context kind and direction.",
		}, []string{"context", "direction"}),
		matchesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anymatch_matches_created_total",
			Help: "Matches detected, by context kind.",
		}, []string{"context"}),
		notificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anymatch_notifications_sent_total",
			Help: "Notifications written, by kind.",
		}, []string{"kind"}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anymatch_guest_sessions_swept_total",
			Help: "Expired guest sessions removed by the sweep.",
		}),
	}

	reg.MustRegister(
		c.swipesRecorded,
		c.matchesCreated,
		c.notificationsSent,
		c.sessionsSwept,
	)
	return c
}

// NewDefault registers on a fresh registry and returns both. Handy for tests
// and for cmd/server, which serves the registry at /metrics.
func NewDefault() (*Collector, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewCollector(reg), reg
}

func (c *Collector) RecordSwipe(contextKind, direction string) {
	c.swipesRecorded.WithLabelValues(contextKind, direction).Inc()
}

func (c *Collector) RecordMatch(contextKind string) {
	c.matchesCreated.WithLabelValues(contextKind).Inc()
}

func (c *Collector) RecordNotification(kind string) {
	c.notificationsSent.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordSessionsSwept(n int64) {
	c.sessionsSwept.Add(float64(n))
}

// Handler returns the scrape endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
