package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates a dedicated Prometheus registry with the standard
// process and Go runtime collectors registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler serving the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics holds the application's business metrics.
type AppMetrics struct {
	RefreshTotal    *prometheus.CounterVec // labels: result=ok|error
	CommandTotal    *prometheus.CounterVec // labels: action, result=ok|error
	ModeTransitions prometheus.Counter
}

// NewAppMetrics registers and returns the business metrics.
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evse_refresh_total",
			Help: "Device state refresh attempts.",
		}, []string{"result"}),
		CommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evse_command_total",
			Help: "Device commands issued by action.",
		}, []string{"action", "result"}),
		ModeTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evse_mode_transitions_total",
			Help: "Observed charging mode transitions.",
		}),
	}
	reg.MustRegister(m.RefreshTotal, m.CommandTotal, m.ModeTransitions)
	return m
}

// ObserveRefresh records one refresh attempt.
func (m *AppMetrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(resultLabel(err)).Inc()
}

// ObserveCommand records one command attempt.
func (m *AppMetrics) ObserveCommand(action string, err error) {
	if m == nil {
		return
	}
	m.CommandTotal.WithLabelValues(action, resultLabel(err)).Inc()
}

// ObserveTransition records one detected mode transition.
func (m *AppMetrics) ObserveTransition() {
	if m == nil {
		return
	}
	m.ModeTransitions.Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
