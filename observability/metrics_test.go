package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestQueryMetricsObserve(t *testing.T) {
	m := Query()
	require.Same(t, m, Query())

	success := testutil.ToFloat64(m.requests.WithLabelValues("chainx_getAssets", "success"))
	failure := testutil.ToFloat64(m.requests.WithLabelValues("chainx_getAssets", "error"))
	coded := testutil.ToFloat64(m.errors.WithLabelValues("chainx_getAssets", "-32602"))

	m.Observe("chainx_getAssets", 0, time.Millisecond)
	m.Observe("chainx_getAssets", -32602, time.Millisecond)

	require.Equal(t, success+1, testutil.ToFloat64(m.requests.WithLabelValues("chainx_getAssets", "success")))
	require.Equal(t, failure+1, testutil.ToFloat64(m.requests.WithLabelValues("chainx_getAssets", "error")))
	require.Equal(t, coded+1, testutil.ToFloat64(m.errors.WithLabelValues("chainx_getAssets", "-32602")))
}

func TestQueryMetricsCounters(t *testing.T) {
	m := Query()

	throttled := testutil.ToFloat64(m.throttles.WithLabelValues("unspecified"))
	m.RecordThrottle("")
	require.Equal(t, throttled+1, testutil.ToFloat64(m.throttles.WithLabelValues("unspecified")))

	failed := testutil.ToFloat64(m.snapshots.WithLabelValues("hash", "error"))
	m.RecordSnapshot(false, errors.New("boom"))
	require.Equal(t, failed+1, testutil.ToFloat64(m.snapshots.WithLabelValues("hash", "error")))

	skipped := testutil.ToFloat64(m.decodeSkips.WithLabelValues("orders"))
	m.RecordDecodeSkip("orders")
	require.Equal(t, skipped+1, testutil.ToFloat64(m.decodeSkips.WithLabelValues("orders")))
}

func TestNilQueryMetricsIsNoop(t *testing.T) {
	var m *QueryMetrics
	m.Observe("x", 0, time.Second)
	m.RecordThrottle("rate_limit")
	m.RecordSnapshot(true, nil)
	m.RecordDecodeSkip("orders")
}
