package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchTotal    *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	staleTotal    *prometheus.CounterVec
	pollCycles    *prometheus.CounterVec
	sessionEvents *prometheus.CounterVec
	snapshots     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

var (
	defaultRecorder *Recorder
	defaultOnce     sync.Once
)

// New returns the process-wide recorder registered with the default registry.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWithRegisterer(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWithRegisterer creates a recorder on reg, mainly for tests.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_console_fetch_total",
				Help: "Backend fetches by resource and result",
			},
			[]string{"resource", "result"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_console_fetch_duration_seconds",
				Help:    "Backend fetch latency in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"resource"},
		),
		staleTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_console_stale_responses_total",
				Help: "Fetch completions discarded because a newer cycle superseded them",
			},
			[]string{"source"},
		),
		pollCycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_console_poll_cycles_total",
				Help: "Applied poll cycles per view",
			},
			[]string{"view"},
		),
		sessionEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_console_session_events_total",
				Help: "Session lifecycle events",
			},
			[]string{"event"},
		),
		snapshots: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_console_snapshots_total",
				Help: "Rendered snapshots handed to the publisher",
			},
			[]string{"view", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_console_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordFetch records one backend fetch.
func (r *Recorder) RecordFetch(resource, result string, d time.Duration) {
	r.fetchTotal.WithLabelValues(resource, result).Inc()
	r.fetchLatency.WithLabelValues(resource).Observe(d.Seconds())
}

// RecordStale records a discarded completion.
func (r *Recorder) RecordStale(source string) {
	r.staleTotal.WithLabelValues(source).Inc()
}

// RecordPollCycle records an applied cycle.
func (r *Recorder) RecordPollCycle(view string) {
	r.pollCycles.WithLabelValues(view).Inc()
}

// RecordSessionEvent records login, logout and expiry events.
func (r *Recorder) RecordSessionEvent(event string) {
	r.sessionEvents.WithLabelValues(event).Inc()
}

// RecordSnapshot records a snapshot publish attempt.
func (r *Recorder) RecordSnapshot(view, result string) {
	r.snapshots.WithLabelValues(view, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordFetch(string, string, time.Duration) {}
func (Nop) RecordStale(string)                        {}
func (Nop) RecordPollCycle(string)                    {}
func (Nop) RecordSessionEvent(string)                 {}
func (Nop) RecordSnapshot(string, string)             {}
func (Nop) RecordError(string)                        {}
