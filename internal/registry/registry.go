// Package registry provides a registry for game mode factories.
// Modes register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Game is the minimal surface every registered mode exposes.
type Game interface {
	// ID returns a unique identifier for this mode (e.g., "survival").
	// Used for CLI commands and score boards.
	ID() string

	// Title returns a human-readable name for display (e.g., "Survival").
	Title() string
}

// GameInfo contains metadata about a registered mode.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new instance of a mode from options.
// It must accept the zero value of O.
type Factory[O any, G Game] func(opts O) G

// Registry maps mode IDs to factories. It is safe for concurrent use;
// the SSH server creates games from many sessions at once.
type Registry[O any, G Game] struct {
	mu        sync.RWMutex
	factories map[string]Factory[O, G]
	titles    map[string]string
}

// New creates an empty registry.
func New[O any, G Game]() *Registry[O, G] {
	return &Registry[O, G]{
		factories: make(map[string]Factory[O, G]),
		titles:    make(map[string]string),
	}
}

// Register adds a factory to the registry.
// Typically called from a package init() function.
// Panics if a mode with the same ID is already registered.
func (r *Registry[O, G]) Register(id string, f Factory[O, G]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	r.factories[id] = f

	// Get title by creating a temporary instance
	var zero O
	r.titles[id] = f(zero).Title()
}

// List returns information about all registered modes, sorted by ID.
func (r *Registry[O, G]) List() []GameInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]GameInfo, 0, len(r.factories))
	for id := range r.factories {
		result = append(result, GameInfo{
			ID:    id,
			Title: r.titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new mode by its ID.
// Returns an error if the ID is not registered.
func (r *Registry[O, G]) Create(id string, opts O) (G, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[id]
	if !ok {
		var zero G
		return zero, fmt.Errorf("registry: unknown game %q", id)
	}

	return f(opts), nil
}

// Exists checks if a mode with the given ID is registered.
func (r *Registry[O, G]) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[id]
	return ok
}
