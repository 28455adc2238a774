package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetrics records activity of the state query surface.
type QueryMetrics struct {
	requests    *prometheus.CounterVec
	errors      *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	throttles   *prometheus.CounterVec
	snapshots   *prometheus.CounterVec
	decodeSkips *prometheus.CounterVec
}

var (
	queryMetricsOnce sync.Once
	queryRegistry    *QueryMetrics
)

// Query returns the lazily-initialised query metrics registry.
func Query() *QueryMetrics {
	queryMetricsOnce.Do(func() {
		queryRegistry = &QueryMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chainx",
				Subsystem: "query",
				Name:      "requests_total",
				Help:      "Total JSON-RPC query requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chainx",
				Subsystem: "query",
				Name:      "errors_total",
				Help:      "Total JSON-RPC query errors segmented by method and JSON-RPC error code.",
			}, []string{"method", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "chainx",
				Subsystem: "query",
				Name:      "duration_seconds",
				Help:      "Latency distribution for query handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chainx",
				Subsystem: "query",
				Name:      "throttles_total",
				Help:      "Count of query requests rejected before dispatch.",
			}, []string{"reason"}),
			snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chainx",
				Subsystem: "snapshot",
				Name:      "resolutions_total",
				Help:      "Count of state snapshot resolutions segmented by reference kind and outcome.",
			}, []string{"ref", "outcome"}),
			decodeSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chainx",
				Subsystem: "query",
				Name:      "decode_skips_total",
				Help:      "Count of stored entries skipped because they failed to decode.",
			}, []string{"view"}),
		}
		prometheus.MustRegister(
			queryRegistry.requests,
			queryRegistry.errors,
			queryRegistry.latency,
			queryRegistry.throttles,
			queryRegistry.snapshots,
			queryRegistry.decodeSkips,
		)
	})
	return queryRegistry
}

// Observe records the outcome of a query. code is the JSON-RPC error code
// written to the caller, zero on success.
func (m *QueryMetrics) Observe(method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if code != 0 {
		outcome = "error"
		m.errors.WithLabelValues(method, strconv.Itoa(code)).Inc()
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter. Reasons should be stable
// strings such as "rate_limit" or "unauthorized".
func (m *QueryMetrics) RecordThrottle(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(reason).Inc()
}

// RecordSnapshot counts a snapshot resolution. latest distinguishes head
// lookups from explicit block hashes.
func (m *QueryMetrics) RecordSnapshot(latest bool, err error) {
	if m == nil {
		return
	}
	ref := "hash"
	if latest {
		ref = "latest"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.snapshots.WithLabelValues(ref, outcome).Inc()
}

// RecordDecodeSkip counts an undecodable entry a view left out.
func (m *QueryMetrics) RecordDecodeSkip(view string) {
	if m == nil {
		return
	}
	m.decodeSkips.WithLabelValues(view).Inc()
}
