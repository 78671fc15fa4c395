// Package build turns resolved component definitions into an executable
// node graph.
//
// Implementation types are looked up in a Catalog, an explicit
// registration-time mapping from type names to constructors. The builder
// instantiates one node per distinct definition name (so a name
// referenced from several parents yields one shared instance) and wraps
// every occurrence in its own position-tracking wrapper.
package build
