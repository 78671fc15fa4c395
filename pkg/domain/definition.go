package domain

// Definition describes one named component of a behavior tree, as
// ingested from a config source and (after resolution) used to construct
// exactly one node instance.
//
// Exactly one of Impl and Ref must be set. Impl names a registered
// implementation type (see pkg/build); Ref names another definition in
// the same registry whose fields are merged underneath this one during
// resolution. A definition holding a Ref is not buildable until the
// registry has been resolved.
type Definition struct {
	// Name identifies the component in the registry namespace.
	Name string

	// Impl is the registered implementation type name ("class_name" on
	// the wire). Mutually exclusive with Ref.
	Impl string

	// Ref references another definition by name ("component_name" on the
	// wire). Mutually exclusive with Impl. Consumed by resolution.
	Ref string

	// Children lists child definition names, in execution order.
	// Controllers only.
	Children []string

	// Params holds the implementation-specific fields of the definition.
	Params map[string]any

	// Source labels where the definition came from (file path, "api",
	// ...) for diagnostics. Set by the registry on Add.
	Source string

	// Info is an optional human-readable caption.
	Info string
}

// Clone returns a deep-enough copy: Children and Params are copied one
// level deep, matching the shallow field-by-field merge of resolution.
func (d *Definition) Clone() *Definition {
	out := *d
	if d.Children != nil {
		out.Children = append([]string(nil), d.Children...)
	}
	if d.Params != nil {
		out.Params = make(map[string]any, len(d.Params))
		for k, v := range d.Params {
			out.Params[k] = v
		}
	}
	return &out
}
