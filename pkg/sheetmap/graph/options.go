package graph

// DefaultMaxDepth bounds relational traversal when Options.MaxDepth is unset.
const DefaultMaxDepth = 16

// Options configures assembly and disassembly.
type Options struct {
	// MaxDepth caps the relational depth visited during assembly.
	MaxDepth int
	// Strict makes a dangling child abort disassembly instead of being
	// reported as a warning.
	Strict bool
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}
