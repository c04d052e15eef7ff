package schema

import (
	"sync"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/style"
)

// Registry holds named conditional rules referenced from `rules` tags.
// Register rules at startup, before the first schema that names them is
// resolved; resolved schemas capture the rule values.
type Registry struct {
	mu       sync.RWMutex
	styles   map[string]style.StyleRule
	comments map[string]style.CommentRule
	statuses map[string]style.StatusRule
}

// NewRegistry returns an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		styles:   make(map[string]style.StyleRule),
		comments: make(map[string]style.CommentRule),
		statuses: make(map[string]style.StatusRule),
	}
}

// Style registers a conditional style rule.
func (r *Registry) Style(name string, rule style.StyleRule) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[name] = rule
	return r
}

// Comment registers a comment rule.
func (r *Registry) Comment(name string, rule style.CommentRule) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[name] = rule
	return r
}

// Status registers a status rule.
func (r *Registry) Status(name string, rule style.StatusRule) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[name] = rule
	return r
}

func (r *Registry) styleRule(name string) (style.StyleRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.styles[name]
	return rule, ok
}

func (r *Registry) commentRule(name string) (style.CommentRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.comments[name]
	return rule, ok
}

func (r *Registry) statusRule(name string) (style.StatusRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.statuses[name]
	return rule, ok
}
