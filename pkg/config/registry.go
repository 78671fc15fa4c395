package config

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// Registry is a named store of component definitions.
//
// All definitions required to build a tree must live in one registry.
// Names are unique; adding an existing name fails unless the update is
// explicit. Resolve must be called before the registry is handed to the
// builder.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*domain.Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*domain.Definition)}
}

// AddOptions controls Add behavior.
type AddOptions struct {
	// Update allows replacing an existing definition of the same name.
	Update bool
}

// Add validates and stores a definition. The source labels where the
// definition came from and is echoed in diagnostics.
func (r *Registry) Add(def *domain.Definition, source string, opts AddOptions) error {
	if def.Name == "" {
		return fmt.Errorf("definition with empty name (source: %s)", source)
	}
	if def.Impl != "" && def.Ref != "" {
		return fmt.Errorf("definition %s (source: %s): both implementation and reference set", def.Name, source)
	}
	if def.Impl == "" && def.Ref == "" {
		return fmt.Errorf("definition %s (source: %s): neither implementation nor reference set", def.Name, source)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.defs[def.Name]; ok && !opts.Update {
		return fmt.Errorf("duplicate definition name %s: new source %s, existing source %s",
			def.Name, source, existing.Source)
	}

	stored := def.Clone()
	stored.Source = source
	r.defs[def.Name] = stored
	return nil
}

// Get returns the definition stored under name, or nil.
func (r *Registry) Get(name string) *domain.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defs[name]
}

// Delete removes a definition by name.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.defs, name)
}

// Names returns all definition names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve flattens every reference chain in the registry.
//
// For each definition referencing another, the referenced (base) fields
// are merged underneath the referencing (more specific) definition's
// fields, shallow and last-writer-wins per field, transitively
// collapsing multi-hop chains. The registry is mutated in place; calling
// Resolve again is a no-op since resolved definitions carry no reference
// field.
func (r *Registry) Resolve() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name := range r.defs {
		if err := r.resolve(name, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) resolve(name string, chain []string) error {
	def := r.defs[name]
	if def.Ref == "" {
		return nil
	}

	ref, ok := r.defs[def.Ref]
	if !ok {
		return fmt.Errorf("definition %s (source: %s) refers to absent definition %s",
			name, def.Source, def.Ref)
	}

	chain = append(chain, name)
	if slices.Contains(chain, def.Ref) {
		return r.cycleError(chain)
	}

	if ref.Ref != "" {
		if err := r.resolve(def.Ref, chain); err != nil {
			return err
		}
		ref = r.defs[def.Ref]
	}

	r.defs[name] = mergeDefinitions(ref, def)
	return nil
}

// cycleError enumerates every link of the reference chain so the
// offending configs can be found across sources.
func (r *Registry) cycleError(chain []string) error {
	var b strings.Builder
	b.WriteString("cyclic reference among definitions:")
	for _, name := range chain {
		def := r.defs[name]
		fmt.Fprintf(&b, "\n\tname: %s, refers to: %s, source: %s", name, def.Ref, def.Source)
	}
	return fmt.Errorf("%s", b.String())
}

// mergeDefinitions flattens one reference hop: the referencing (child)
// definition's fields win over the referenced (base) definition's.
func mergeDefinitions(base, child *domain.Definition) *domain.Definition {
	out := child.Clone()
	out.Ref = ""
	out.Impl = base.Impl
	if len(out.Children) == 0 {
		out.Children = append([]string(nil), base.Children...)
	}
	if out.Info == "" {
		out.Info = base.Info
	}

	params := make(map[string]any, len(base.Params)+len(child.Params))
	for k, v := range base.Params {
		params[k] = v
	}
	for k, v := range child.Params {
		params[k] = v
	}
	out.Params = params
	return out
}
