// Package modules checks a program of many chunks: it orders them by
// their require edges and checks independent chunks concurrently,
// publishing each public surface exactly once.
package modules

import (
	"fmt"
	"sync"

	"lunatype/pkg/ast"
	"lunatype/pkg/checker"
	"lunatype/pkg/source"
)

// Module is one chunk awaiting checking. Requires lists the module
// names its require() calls mention.
type Module struct {
	Name     string
	File     *source.File
	Chunk    *ast.Chunk
	Requires []string
}

// Registry holds published module surfaces. Publish is write-once per
// name; lookups are safe from any goroutine.
type Registry struct {
	mu        sync.RWMutex
	published map[string]*checker.PublicSymbolTable
}

func NewRegistry() *Registry {
	return &Registry{published: make(map[string]*checker.PublicSymbolTable)}
}

// Publish stores a module's surface. Publishing the same name twice
// is a programming error and panics: dependents may already have read
// the first surface.
func (r *Registry) Publish(name string, table *checker.PublicSymbolTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.published[name]; exists {
		panic(fmt.Sprintf("modules: %q published twice", name))
	}
	r.published[name] = table
}

// LookupModule implements checker.Resolver.
func (r *Registry) LookupModule(name string) (*checker.PublicSymbolTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.published[name]
	return t, ok
}

// Len reports how many modules have been published.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.published)
}
