package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics - метрики сервиса безопасности туристов.
// Все методы допускают nil-получатель, в тестах метрики не регистрируются.
type Metrics struct {
	RefreshRuns      *prometheus.CounterVec
	RefreshDuration  prometheus.Histogram
	CellsRefreshed   prometheus.Counter
	CellsFailed      prometheus.Counter
	AlertTransitions *prometheus.CounterVec
	LedgerSubmits    *prometheus.CounterVec
	NotifyDelivered  *prometheus.CounterVec
	GeocodeFallbacks prometheus.Counter
}

// New регистрирует метрики в реестре по умолчанию. Вызывается один раз на процесс.
func New() *Metrics {
	return &Metrics{
		RefreshRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tourist_safety_risk_refresh_runs_total",
			Help: "Risk refresh runs by outcome",
		}, []string{"outcome"}), // outcome: "ok", "skipped", "failed"

		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tourist_safety_risk_refresh_duration_seconds",
			Help:    "Duration of a full risk refresh run",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		CellsRefreshed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tourist_safety_risk_cells_refreshed_total",
			Help: "Risk cells recomputed and stored",
		}),

		CellsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tourist_safety_risk_cells_failed_total",
			Help: "Risk cells skipped because of an error",
		}),

		AlertTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tourist_safety_alert_transitions_total",
			Help: "Emergency alert lifecycle transitions by target status",
		}, []string{"status"}),

		LedgerSubmits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tourist_safety_ledger_submissions_total",
			Help: "Ledger submissions by kind and outcome",
		}, []string{"kind", "outcome"}),

		NotifyDelivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tourist_safety_notifications_total",
			Help: "Notifications by delivery channel",
		}, []string{"channel"}), // channel: "observer", "queue", "kafka", "webhook"

		GeocodeFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tourist_safety_geocode_fallbacks_total",
			Help: "Zone names that fell back to the coordinate placeholder",
		}),
	}
}

// ObserveRefresh фиксирует завершенный прогон обновления
func (m *Metrics) ObserveRefresh(outcome string, d time.Duration, refreshed, failed int) {
	if m == nil {
		return
	}
	m.RefreshRuns.WithLabelValues(outcome).Inc()
	if outcome == "skipped" {
		return
	}
	m.RefreshDuration.Observe(d.Seconds())
	m.CellsRefreshed.Add(float64(refreshed))
	m.CellsFailed.Add(float64(failed))
}

func (m *Metrics) IncAlertTransition(status string) {
	if m != nil {
		m.AlertTransitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncLedgerSubmit(kind, outcome string) {
	if m != nil {
		m.LedgerSubmits.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) IncNotify(channel string) {
	if m != nil {
		m.NotifyDelivered.WithLabelValues(channel).Inc()
	}
}

func (m *Metrics) IncGeocodeFallback() {
	if m != nil {
		m.GeocodeFallbacks.Inc()
	}
}
