// Package emitter defines the client-flavor plugin contract and the driver
// that runs a plugin over operation contracts.
package emitter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/oapi2client/internal/contract"
	"github.com/mark3labs/oapi2client/internal/spec"
	"github.com/mark3labs/oapi2client/internal/tstype"
)

// Export is one symbol a generated file may need from a dependency.
type Export struct {
	Name    string
	Default bool
	Values  bool
	// SyntheticDefaultImport marks a default export that is only importable
	// as a default when the target allows synthetic default imports.
	SyntheticDefaultImport bool
}

// Dependency lists the exports a flavor may reference from one package.
type Dependency struct {
	Dependency string
	Exports    []Export
}

// HeaderFlags select the shared helpers a file header needs.
type HeaderFlags struct {
	HasAwaitedType              bool
	IsMutatorWithRequestOptions bool
}

// Client is the code rendered for one operation.
type Client struct {
	Implementation string
	Imports        []tstype.ImportRef
}

// Plugin renders operations for one client flavor. Implementations must not
// modify the operation they are given.
type Plugin interface {
	Name() string
	Dependencies(hasGlobalMutator bool) []Dependency
	Header(flags HeaderFlags) string
	Client(op *contract.Operation, ctx *contract.Context) (Client, error)
}

// Kind classifies an operation for hook-style flavors.
type Kind int

const (
	KindQuery Kind = iota + 1
	KindMutation
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindMutation:
		return "mutation"
	}
	return "unknown"
}

// Classify maps GET to KindQuery and POST, PUT, PATCH and DELETE to
// KindMutation. Other verbs return contract.ErrUnsupportedVerb.
func Classify(verb spec.HttpMethod) (Kind, error) {
	switch verb {
	case spec.GET:
		return KindQuery, nil
	case spec.POST, spec.PUT, spec.PATCH, spec.DELETE:
		return KindMutation, nil
	}
	return 0, fmt.Errorf("%w: %s", contract.ErrUnsupportedVerb, verb)
}

// Registry holds the available flavors by name.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry returns a registry holding plugins. It panics on duplicate
// names, which is a programming error.
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{plugins: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds p under p.Name().
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.plugins == nil {
		r.plugins = make(map[string]Plugin)
	}
	if _, ok := r.plugins[p.Name()]; ok {
		return fmt.Errorf("client flavor %q already registered", p.Name())
	}
	r.plugins[p.Name()] = p
	return nil
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Names lists registered flavors in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for n := range r.plugins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
