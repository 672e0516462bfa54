package jobmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/odyssey-erp/campaign-insights/internal/observability"
)

// Metrics counts job runs and failures, times them and tallies the reports
// each warmup pushed into the cache.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	warmed   *prometheus.CounterVec
}

// NewMetrics attaches the job collectors to registerer, falling back to the
// default Prometheus registerer. Repeated calls on one registry share
// collectors. It panics if a metric name is taken by an incompatible
// collector.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaigns_jobs_total",
			Help: "Total job executions partitioned by job name and status.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaigns_jobs_failures_total",
			Help: "Total failures observed for background jobs.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campaigns_job_duration_seconds",
			Help:    "Duration in seconds of background job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		warmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaigns_reports_warmed_total",
			Help: "Reports prebuilt into the cache by the warmup job, by locale.",
		}, []string{"locale"}),
	}
	m.runs = mustReuse(registerer, m.runs)
	m.failures = mustReuse(registerer, m.failures)
	m.duration = mustReuse(registerer, m.duration)
	m.warmed = mustReuse(registerer, m.warmed)
	return m
}

func mustReuse[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	got, err := observability.RegisterOrReuse(reg, c)
	if err != nil {
		panic(err)
	}
	return got
}

// Tracker times one job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts timing a run of job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records the run as a success or failure and passes err through.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// ReportWarmed counts a report prebuilt into the cache for a locale.
func (m *Metrics) ReportWarmed(locale string) {
	if m == nil {
		return
	}
	m.warmed.WithLabelValues(locale).Inc()
}
