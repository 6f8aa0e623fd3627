// Package metrics counts divisions and exports on a private Prometheus
// registry. There is no HTTP endpoint; the registry is dumped to a textfile
// for node_exporter's textfile collector when one is configured.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kingrea/class-divider/internal/partition"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry       *prometheus.Registry
	partitions     *prometheus.CounterVec
	membersTotal   prometheus.Counter
	exports        *prometheus.CounterVec
	lastGroupCount prometheus.Gauge
}

// New registers the divider collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		partitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "divider_partitions_total",
			Help: "Number of partitions produced, including re-shuffles.",
		}, []string{"mode"}),
		membersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "divider_members_assigned_total",
			Help: "Number of people placed into groups.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "divider_exports_total",
			Help: "Number of exports by destination format.",
		}, []string{"format"}),
		lastGroupCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "divider_last_group_count",
			Help: "Group count of the most recent partition.",
		}),
	}
	m.registry.MustRegister(m.partitions, m.membersTotal, m.exports, m.lastGroupCount)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePartition records one partition result.
func (m *Metrics) ObservePartition(mode partition.Mode, groups []partition.Group) {
	if m == nil {
		return
	}
	members := 0
	for _, g := range groups {
		members += g.Size()
	}
	m.partitions.WithLabelValues(mode.String()).Inc()
	m.membersTotal.Add(float64(members))
	m.lastGroupCount.Set(float64(len(groups)))
}

// ObserveExport records one export to the given format ("csv", "clipboard",
// "text").
func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// WriteTextfile writes the registry in the text exposition format. An empty
// path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics: ensure dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
