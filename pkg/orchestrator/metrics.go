package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gooddata/grizzly/pkg/engine"
)

// Metrics holds the orchestrator's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	startAttempts prometheus.Counter
	portRetries   prometheus.Counter
	startFailures *prometheus.CounterVec
	listenPort    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		startAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "grizzly",
			Name:      "start_attempts_total",
			Help:      "Engine start attempts issued.",
		}),
		portRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "grizzly",
			Name:      "port_retries_total",
			Help:      "Port increments after address-in-use failures.",
		}),
		startFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grizzly",
			Name:      "start_failures_total",
			Help:      "Failed start attempts by classification code.",
		}, []string{"code"}),
		listenPort: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "grizzly",
			Name:      "listen_port",
			Help:      "Port the engine is serving on, 0 when not running.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.startAttempts, m.portRetries, m.startFailures, m.listenPort)
	}
	return m
}

func (m *Metrics) attempt() {
	if m != nil {
		m.startAttempts.Inc()
	}
}

func (m *Metrics) retry() {
	if m != nil {
		m.portRetries.Inc()
	}
}

func (m *Metrics) failure(code engine.Code) {
	if m != nil {
		m.startFailures.WithLabelValues(string(code)).Inc()
	}
}

func (m *Metrics) running(port int) {
	if m != nil {
		m.listenPort.Set(float64(port))
	}
}
