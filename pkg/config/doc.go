// Package config manages the component definitions a behavior tree is
// built from.
//
// Definitions live in a Registry, a flat namespace of named components.
// A definition either names a registered implementation type directly or
// references another definition; Resolve flattens reference chains into
// concrete definitions, implementing a light inheritance between
// components that encourages reuse (a base "retry" sequence specialized
// by three trees, for example).
//
// Raw definitions arrive as plain maps, typically parsed from YAML or
// JSON files by the loader in this package, or assembled by hand in
// tests and embedding applications.
package config
