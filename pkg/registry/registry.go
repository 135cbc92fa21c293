package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arthur-debert/appsync/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name
type Registry[T any] interface {
	// Register adds an item to the registry
	Register(name string, item T) error

	// Get retrieves an item from the registry
	Get(name string) (T, error)

	// Remove removes an item from the registry
	Remove(name string) error

	// List returns all registered names
	List() []string

	// Has checks if an item is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

// Option customizes a registry
type Option func(*settings)

type settings struct {
	kind          string
	duplicateCode errors.ErrorCode
	missingCode   errors.ErrorCode
}

// WithKind sets the noun used in error messages, e.g. "source"
func WithKind(kind string) Option {
	return func(s *settings) { s.kind = kind }
}

// WithDuplicateCode sets the error code returned when a name is registered twice
func WithDuplicateCode(code errors.ErrorCode) Option {
	return func(s *settings) { s.duplicateCode = code }
}

// WithMissingCode sets the error code returned when a name is not registered
func WithMissingCode(code errors.ErrorCode) Option {
	return func(s *settings) { s.missingCode = code }
}

// registry is the internal implementation of Registry
type registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	settings
}

// New creates a new Registry instance
func New[T any](opts ...Option) Registry[T] {
	r := &registry[T]{
		items: make(map[string]T),
		settings: settings{
			kind:          "item",
			duplicateCode: errors.ErrAlreadyExists,
			missingCode:   errors.ErrNotFound,
		},
	}
	for _, opt := range opts {
		opt(&r.settings)
	}
	return r
}

// Register adds an item to the registry
func (r *registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(r.duplicateCode, "%s '%s' is already registered", r.kind, name).
			WithDetail("name", name)
	}

	r.items[name] = item
	return nil
}

// Get retrieves an item from the registry
func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(r.missingCode, "%s '%s' not found in registry", r.kind, name).
			WithDetail("name", name)
	}

	return item, nil
}

// Remove removes an item from the registry
func (r *registry[T]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; !exists {
		return errors.Newf(r.missingCode, "%s '%s' not found in registry", r.kind, name)
	}

	delete(r.items, name)
	return nil
}

// List returns all registered names in sorted order
func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Has checks if an item is registered
func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

// Count returns the number of registered items
func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustRegister registers an item and panics if registration fails.
// Registration tables are static, so a failure is a programming error.
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
