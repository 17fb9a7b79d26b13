package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the keypad counters exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry
	inputs   *prometheus.CounterVec
	commits  prometheus.Counter
	undo     *prometheus.CounterVec
}

// NewMetrics registers the counters on a fresh registry, alongside the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		inputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_inputs_total",
			Help: "Keypad edits applied, by kind.",
		}, []string{"kind"}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tally_commits_total",
			Help: "Expressions committed with =.",
		}),
		undo: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_undo_total",
			Help: "Undo and redo steps taken, by direction.",
		}, []string{"direction"}),
	}
	reg.MustRegister(
		m.inputs,
		m.commits,
		m.undo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
