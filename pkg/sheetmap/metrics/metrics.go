// Package metrics exposes Prometheus instrumentation for exports and reads.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sheetmap"

// Operation outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector records row counts and operation outcomes.
type Collector struct {
	rowsWritten *prometheus.CounterVec
	rowsRead    *prometheus.CounterVec
	dangling    *prometheus.CounterVec
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates a Collector and registers it with reg. A nil reg leaves the
// collector unregistered.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Data rows written per sheet.",
		}, []string{"sheet"}),
		rowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read per sheet.",
		}, []string{"sheet"}),
		dangling: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dangling_children_total",
			Help:      "Child rows whose key matched no parent.",
		}, []string{"sheet"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Completed operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		return c, nil
	}
	for _, col := range []prometheus.Collector{c.rowsWritten, c.rowsRead, c.dangling, c.operations, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RowsWritten adds n rows written to sheet.
func (c *Collector) RowsWritten(sheet string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.rowsWritten.WithLabelValues(sheet).Add(float64(n))
}

// RowsRead adds n rows read from sheet.
func (c *Collector) RowsRead(sheet string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.rowsRead.WithLabelValues(sheet).Add(float64(n))
}

// DanglingChild counts one orphaned child row of sheet.
func (c *Collector) DanglingChild(sheet string) {
	if c == nil {
		return
	}
	c.dangling.WithLabelValues(sheet).Inc()
}

// Observe records the outcome and latency of op started at start.
func (c *Collector) Observe(op string, start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.operations.WithLabelValues(op, outcome).Inc()
	c.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
