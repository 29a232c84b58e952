// Package observer provides an ordered, goroutine-safe callback registry.
package observer

import (
	"slices"
	"sync"
)

// ID identifies one registration.
type ID uint64

type entry[F any] struct {
	id ID
	fn F
}

// Registry holds callbacks in subscription order. The zero value is ready to use.
type Registry[F any] struct {
	mu      sync.Mutex
	lastID  ID
	entries []entry[F]
}

// Add registers fn and returns its id.
func (r *Registry[F]) Add(fn F) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	r.entries = append(r.entries, entry[F]{id: r.lastID, fn: fn})
	return r.lastID
}

// Remove unregisters id. It reports whether id was registered.
func (r *Registry[F]) Remove(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.entries, func(e entry[F]) bool { return e.id == id })
	if i < 0 {
		return false
	}
	// Copy so a broadcast iterating the previous slice is unaffected.
	r.entries = slices.Delete(slices.Clone(r.entries), i, i+1)
	return true
}

// List returns the callbacks in subscription order. The result is a copy:
// membership changes while iterating it are not observed.
func (r *Registry[F]) List() []F {
	r.mu.Lock()
	defer r.mu.Unlock()
	fns := make([]F, len(r.entries))
	for i, e := range r.entries {
		fns[i] = e.fn
	}
	return fns
}

// Len returns the number of registrations.
func (r *Registry[F]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear removes every registration.
func (r *Registry[F]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
