package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/class-divider/internal/partition"
)

func TestObservePartition(t *testing.T) {
	m := New()
	groups := partition.New().Partition([]string{"a", "b", "c", "d", "e"}, partition.ByGroupCount, 2, nil)
	m.ObservePartition(partition.ByGroupCount, groups)
	m.ObservePartition(partition.ByGroupCount, groups)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.partitions.WithLabelValues("by-group-count")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.membersTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lastGroupCount))
}

func TestObserveExportAndTextfile(t *testing.T) {
	m := New()
	m.ObserveExport("csv")
	m.ObserveExport("clipboard")
	m.ObserveExport("csv")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.exports.WithLabelValues("csv")))

	path := filepath.Join(t.TempDir(), "prom", "divider.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `divider_exports_total{format="csv"} 2`)

	assert.NoError(t, m.WriteTextfile(""))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObservePartition(partition.ByMemberCount, nil)
	m.ObserveExport("csv")
	assert.NoError(t, m.WriteTextfile("ignored"))
}
