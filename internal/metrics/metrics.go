package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gate outcome label values
const (
	OutcomeBlocked    = "blocked"
	OutcomeProceeding = "proceeding"
)

// Metrics holds the save gate and persistence counters
type Metrics struct {
	GateOutcomes    *prometheus.CounterVec
	InvalidSettings prometheus.Counter
	SavedSettings   prometheus.Counter
	SaveFailures    prometheus.Counter
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics returns the process-wide metrics, registering them on first use
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			GateOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "customize_gate_outcomes_total",
				Help: "Total number of save gate passes by outcome",
			}, []string{"outcome"}),
			InvalidSettings: promauto.NewCounter(prometheus.CounterOpts{
				Name: "customize_invalid_settings_total",
				Help: "Total number of settings rejected by the save gate",
			}),
			SavedSettings: promauto.NewCounter(prometheus.CounterOpts{
				Name: "customize_saved_settings_total",
				Help: "Total number of setting values committed",
			}),
			SaveFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "customize_save_failures_total",
				Help: "Total number of save batches rolled back after passing the gate",
			}),
		}
	})
	return metricsInstance
}

// RecordGateOutcome counts one gate pass
func (m *Metrics) RecordGateOutcome(outcome string, invalidCount int) {
	if m == nil || m.GateOutcomes == nil {
		return
	}
	m.GateOutcomes.WithLabelValues(outcome).Inc()
	if invalidCount > 0 {
		m.InvalidSettings.Add(float64(invalidCount))
	}
}

// RecordSaved counts committed setting values
func (m *Metrics) RecordSaved(count int) {
	if m == nil || m.SavedSettings == nil {
		return
	}
	m.SavedSettings.Add(float64(count))
}

// RecordSaveFailure counts a rolled back batch
func (m *Metrics) RecordSaveFailure() {
	if m == nil || m.SaveFailures == nil {
		return
	}
	m.SaveFailures.Inc()
}
