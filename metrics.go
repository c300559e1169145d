/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ugcexport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/suparena/ugcexport/export"
)

// Metrics contains Prometheus metrics for exports.
type Metrics struct {
	exports        *prometheus.CounterVec
	nodes          prometheus.Counter
	binaryBytes    prometheus.Counter
	embeddedErrors prometheus.Counter
	duration       *prometheus.HistogramVec
}

// NewMetrics creates the export collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ugcexport_exports_total",
				Help: "Total number of exports by kind and result",
			},
			[]string{"kind", "result"},
		),

		nodes: factory.NewCounter(prometheus.CounterOpts{
			Name: "ugcexport_nodes_total",
			Help: "Total number of nodes serialized",
		}),

		binaryBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "ugcexport_binary_bytes_total",
			Help: "Total number of binary source bytes encoded",
		}),

		embeddedErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "ugcexport_embedded_errors_total",
			Help: "Total number of content errors embedded in exported records",
		}),

		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ugcexport_export_duration_seconds",
				Help:    "Duration of exports in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4.4min
			},
			[]string{"kind"},
		),
	}
}

// RecordExport records one finished export. result is "ok", "partial" or "failed".
func (m *Metrics) RecordExport(kind string, report *export.Report, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err != nil:
		result = "failed"
	case report != nil && report.Partial():
		result = "partial"
	}
	m.exports.WithLabelValues(kind, result).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())

	if report != nil {
		m.nodes.Add(float64(report.NodesVisited))
		m.binaryBytes.Add(float64(report.BinaryBytes))
		m.embeddedErrors.Add(float64(len(report.Errors)))
	}
}
