package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.RowsWritten("Student", 2)
	c.RowsWritten("Student", 1)
	c.RowsWritten("Course", 0)
	c.RowsRead("Course", 4)
	c.DanglingChild("Course")
	c.Observe("export", time.Now(), nil)
	c.Observe("export", time.Now(), errors.New("boom"))

	assert.Equal(t, 3.0, testutil.ToFloat64(c.rowsWritten.WithLabelValues("Student")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.rowsRead.WithLabelValues("Course")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dangling.WithLabelValues("Course")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("export", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("export", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.rowsWritten))

	n, err := testutil.GatherAndCount(reg, "sheetmap_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RowsWritten("x", 1)
		c.RowsRead("x", 1)
		c.DanglingChild("x")
		c.Observe("read", time.Now(), nil)
	})
}
