package dashboardhttp

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/odyssey-erp/campaign-insights/internal/observability"
)

// Metrics is the dashboard.Observer backed by Prometheus: cache hits and
// misses per locale plus report build latency.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	builds *prometheus.HistogramVec
}

// NewMetrics registers on reg, or on the default registerer when reg is nil.
// Calling it twice with one registry shares the collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaigns_report_cache_hits_total",
			Help: "Number of cache hits for campaign reports.",
		}, []string{"locale"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaigns_report_cache_miss_total",
			Help: "Number of cache misses for campaign reports.",
		}, []string{"locale"}),
		builds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campaigns_report_build_duration_seconds",
			Help:    "Duration required to build campaign reports.",
			Buckets: prometheus.DefBuckets,
		}, []string{"locale"}),
	}

	var err error
	if m.hits, err = observability.RegisterOrReuse(reg, m.hits); err != nil {
		return nil, fmt.Errorf("report metrics: %w", err)
	}
	if m.misses, err = observability.RegisterOrReuse(reg, m.misses); err != nil {
		return nil, fmt.Errorf("report metrics: %w", err)
	}
	if m.builds, err = observability.RegisterOrReuse(reg, m.builds); err != nil {
		return nil, fmt.Errorf("report metrics: %w", err)
	}
	return m, nil
}

// ObserveCache counts a cache lookup.
func (m *Metrics) ObserveCache(locale string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.hits.WithLabelValues(locale).Inc()
		return
	}
	m.misses.WithLabelValues(locale).Inc()
}

// ObserveBuild records how long a report build took.
func (m *Metrics) ObserveBuild(locale string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(locale).Observe(elapsed.Seconds())
}
