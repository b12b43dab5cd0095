package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("transactions", "GET", 200, 15*time.Millisecond)
	m.ObserveRequest("transactions", "GET", 200, 25*time.Millisecond)
	m.ObserveRequest("transactions", "POST", 0, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DataRequestTotal.WithLabelValues("transactions", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DataRequestTotal.WithLabelValues("transactions", "POST", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.DataRequestDuration))
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/api/mls/lookup", 429, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/api/mls/lookup", "429")))
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.MLSLookup("hit")
	m.MLSLookup("hit")
	m.EmailSent(true)
	m.EmailSent(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MLSLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("failed")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	require.Panics(t, func() { New(reg) })
}
