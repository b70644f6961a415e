package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordBooking(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), "test")

	m.RecordBooking("created")
	m.RecordBooking("created")
	m.RecordBooking("slot_full")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingAttempts.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingAttempts.WithLabelValues("slot_full")))
}

func TestMetrics_ObserveQueryCountsErrors(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), "test")

	m.ObserveQuery("query", 0.01, nil)
	m.ObserveQuery("query", 0.02, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.DBQueryDuration))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordBooking("created")
		m.ObserveHTTP("GET", "/", "200", 0.1)
		m.ObserveQuery("exec", 0.1, nil)
		m.SetConnections("idle", 1)
		m.IncTxRetry("serializable")
	})
}
