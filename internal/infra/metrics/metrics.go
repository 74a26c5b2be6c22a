// Package metrics exposes pipeline telemetry as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/ports"
)

const namespace = "docmapr"

// Metrics holds the collectors of one process, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	FailuresTotal *prometheus.CounterVec
}

var _ ports.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs by outcome (ok|failed)",
			},
			[]string{"outcome"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Time spent reaching each pipeline stage",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		FailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Failed runs by last stage reached and error kind",
			},
			[]string{"stage", "kind"},
		),
	}

	m.registry.MustRegister(m.RunsTotal, m.StageDuration, m.FailuresTotal)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) StageCompleted(stage domain.Stage, elapsed time.Duration) {
	m.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

func (m *Metrics) RunFinished(out domain.Outcome) {
	if out.OK() {
		m.RunsTotal.WithLabelValues("ok").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("failed").Inc()

	stage := domain.StageOf(out.Err)
	if stage == "" {
		stage = out.Stage
	}
	kind := domain.KindOf(out.Err)
	if kind == "" {
		kind = "unknown"
	}
	m.FailuresTotal.WithLabelValues(string(stage), string(kind)).Inc()
}

// WriteTextfile writes the registry in text exposition format, suitable for
// the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
