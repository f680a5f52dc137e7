package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRefresh("ok", time.Second, 3, 1)
		m.IncAlertTransition("resolved")
		m.IncLedgerSubmit("alert", "ok")
		m.IncNotify("queue")
		m.IncGeocodeFallback()
	})
}

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.ObserveRefresh("ok", 2*time.Second, 5, 1)
	m.ObserveRefresh("skipped", 0, 0, 0)
	m.IncAlertTransition("responding")
	m.IncAlertTransition("responding")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshRuns.WithLabelValues("skipped")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.CellsRefreshed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CellsFailed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AlertTransitions.WithLabelValues("responding")))
}
