package sources

import (
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/registry"
	"github.com/arthur-debert/appsync/pkg/runner"
)

// Factory builds a driver for a host environment
type Factory func(env Env) Driver

// Entry describes a registered source
type Entry struct {
	Name     string
	Provider string
	New      Factory
}

// builtins is the one place that names the installers appsync ships with
var builtins = []Entry{
	{Name: "cask", Provider: ProviderBrew, New: NewCask},
	{Name: "formula", Provider: ProviderBrew, New: NewFormula},
	{Name: "mas", Provider: ProviderMAS, New: NewMAS},
	{Name: "uv", Provider: ProviderUV, New: NewUV},
}

var providerLabels = map[string]string{
	ProviderBrew: "Homebrew",
	ProviderUV:   "uv",
	ProviderMAS:  "Mac App Store",
}

// ProviderLabel returns the display name of a provider
func ProviderLabel(provider string) string {
	if label, ok := providerLabels[provider]; ok {
		return label
	}
	return provider
}

// Registry maps source ids to their factories
type Registry struct {
	entries registry.Registry[Entry]
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: registry.New[Entry](
			registry.WithKind("source"),
			registry.WithDuplicateCode(errors.ErrDuplicateRegistration),
			registry.WithMissingCode(errors.ErrUnknownSource),
		),
	}
}

// DefaultRegistry returns a registry holding the built-in sources
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range builtins {
		r.MustRegister(e)
	}
	return r
}

// Register adds a source. Registering an id twice fails.
func (r *Registry) Register(e Entry) error {
	e.Name = normalize(e.Name)
	if e.Name == "" || e.New == nil {
		return errors.New(errors.ErrInvalidInput, "a source needs a name and a factory")
	}
	if e.Provider == "" {
		e.Provider = e.Name
	}
	return r.entries.Register(e.Name, e)
}

// MustRegister is Register that panics on error
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Names returns the registered ids, sorted
func (r *Registry) Names() []string {
	return r.entries.List()
}

// Has reports whether name is a registered source
func (r *Registry) Has(name string) bool {
	return r.entries.Has(normalize(name))
}

// Lookup returns the entry for name or ErrUnknownSource
func (r *Registry) Lookup(name string) (Entry, error) {
	key := normalize(name)
	if !r.entries.Has(key) {
		return Entry{}, errors.Newf(errors.ErrUnknownSource,
			"unknown source %q (valid sources: %s)", name, strings.Join(r.Names(), ", ")).
			WithDetail("source", name).
			WithDetail("valid", r.Names())
	}
	return r.entries.Get(key)
}

// Create builds the strategy for name
func (r *Registry) Create(name string, run runner.Runner, opts ...Option) (Strategy, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return NewSource(e.New(newEnv(run, opts...))), nil
}

// ProviderOf returns the provider id of a source, or "" when unknown
func (r *Registry) ProviderOf(name string) string {
	e, err := r.Lookup(name)
	if err != nil {
		return ""
	}
	return e.Provider
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
