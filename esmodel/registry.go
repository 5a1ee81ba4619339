// Package esmodel exposes a fluent, schema-driven document-mapping layer
// over a remote search engine. Callers register schemas with a Registry,
// obtain Models, and build queries that translate into engine search or
// multi-get requests; hits are rehydrated into Documents with optional
// cross-reference population.
package esmodel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/esmodel/esmodel/schema"
	"github.com/esmodel/esmodel/types"
)

// Registry owns the engine handle and the compiled models. It is the
// explicit context object everything else hangs off: construct one at
// startup, register models, and share it. Registration is expected to
// happen during initialization; lookups afterwards are read-only.
type Registry struct {
	engine      types.Engine
	indexPrefix string

	mu     sync.RWMutex
	models map[string]*Model
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithIndexPrefix prepends a prefix to every model's default index name,
// e.g. "app-" turns model Post into index "app-post".
func WithIndexPrefix(prefix string) Option {
	return func(r *Registry) { r.indexPrefix = prefix }
}

// New creates a registry bound to the given engine.
func New(engine types.Engine, opts ...Option) *Registry {
	r := &Registry{
		engine: engine,
		models: make(map[string]*Model),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine returns the engine handle the registry was constructed with.
func (r *Registry) Engine() types.Engine { return r.engine }

// RegisterOption overrides per-model defaults at registration time.
type RegisterOption func(*Model)

// WithIndex overrides the model's index name.
func WithIndex(index string) RegisterOption {
	return func(m *Model) { m.index = index }
}

// WithDocType overrides the model's document type.
func WithDocType(docType string) RegisterOption {
	return func(m *Model) { m.docType = docType }
}

// Register compiles nothing further (the schema is already compiled) but
// binds it under the given name and returns the model. Registering the
// same name twice is an error: a name is registered once and looked up
// thereafter.
func (r *Registry) Register(name string, s *schema.Schema, opts ...RegisterOption) (*Model, error) {
	lower := strings.ToLower(name)
	m := &Model{
		name:     name,
		index:    r.indexPrefix + lower,
		docType:  lower,
		schema:   s,
		registry: r,
	}
	for _, opt := range opts {
		opt(m)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[name]; exists {
		return nil, fmt.Errorf("model %q is already registered", name)
	}
	r.models[name] = m
	return m, nil
}

// MustRegister is Register for schemas known-good at init time.
func (r *Registry) MustRegister(name string, s *schema.Schema, opts ...RegisterOption) *Model {
	m, err := r.Register(name, s, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Model looks up a previously registered model by name.
func (r *Registry) Model(name string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	if !ok {
		return nil, &types.UnregisteredModelError{Name: name}
	}
	return m, nil
}

// ModelNames returns the registered model names; ordering is unspecified.
func (r *Registry) ModelNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}
