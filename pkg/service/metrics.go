package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the build metrics of a book. It uses its own registry so
// several services (and tests) never share collectors.
type Metrics struct {
	Registry *prometheus.Registry

	BuildsTotal          *prometheus.CounterVec
	BuildDurationSeconds prometheus.Histogram
	SidebarEntries       *prometheus.GaugeVec
	OrphanDocuments      prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all collectors registered on an
// isolated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grove_book_builds_total",
				Help: "Total navigation builds by result.",
			},
			[]string{"result"},
		),
		BuildDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "grove_book_build_duration_seconds",
				Help:    "Duration of navigation builds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		SidebarEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "grove_book_sidebar_entries",
				Help: "Number of resolved entries per sidebar in the last successful build.",
			},
			[]string{"sidebar"},
		),
		OrphanDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "grove_book_orphan_documents",
				Help: "Documents not placed in any sidebar in the last successful build.",
			},
		),
	}

	reg.MustRegister(
		m.BuildsTotal,
		m.BuildDurationSeconds,
		m.SidebarEntries,
		m.OrphanDocuments,
	)
	return m
}

// Handler returns an http.Handler serving the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(res *Result, err error, elapsed time.Duration) {
	m.BuildDurationSeconds.Observe(elapsed.Seconds())
	if err != nil {
		m.BuildsTotal.WithLabelValues("error").Inc()
		return
	}
	m.BuildsTotal.WithLabelValues("success").Inc()

	// Sidebars removed since the last build must not linger.
	m.SidebarEntries.Reset()
	for _, sb := range res.Sidebars {
		m.SidebarEntries.WithLabelValues(sb.Name).Set(float64(len(sb.Entries)))
	}
	m.OrphanDocuments.Set(float64(len(res.Orphans)))
}
