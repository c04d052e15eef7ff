// Package sheetmap maps typed object graphs to and from spreadsheet
// documents using struct tags.
package sheetmap

import (
	"log/slog"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/backend"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/graph"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/metrics"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/schema"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/xlsx"
)

// Options configures exports and reads.
type Options struct {
	// Resolver resolves and caches schemas. If nil, schema.Default() is used.
	Resolver *schema.Resolver
	// Backend produces and parses documents. If nil, an xlsx backend is used.
	Backend backend.Backend
	// Mode is the initial emission mode of an export.
	Mode backend.Mode
	// Logger receives debug and warning records. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Metrics records row counts and outcomes. May be nil.
	Metrics *metrics.Collector
	// Strict makes a dangling child fail the read.
	// If nil, defaults to true.
	Strict *bool
	// MaxDepth caps relational depth. If zero, graph.DefaultMaxDepth is used.
	MaxDepth int
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Mode: backend.Buffered,
	}
}

// ShouldBeStrict returns whether dangling children abort a read.
func (o Options) ShouldBeStrict() bool {
	if o.Strict != nil {
		return *o.Strict
	}
	return true
}

func (o Options) resolver() *schema.Resolver {
	if o.Resolver != nil {
		return o.Resolver
	}
	return schema.Default()
}

func (o Options) backend() backend.Backend {
	if o.Backend != nil {
		return o.Backend
	}
	return xlsx.New(xlsx.Options{})
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) graph() graph.Options {
	return graph.Options{
		MaxDepth: o.MaxDepth,
		Strict:   o.ShouldBeStrict(),
	}
}
