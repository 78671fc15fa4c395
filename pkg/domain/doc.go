// Package domain contains the core value types of the canopy engine:
// execution statuses, the mutable execution state a tree is evaluated
// against, and the component definitions a tree is built from.
//
// The package has no dependencies on the rest of the engine so that
// adapters (stores, transports) can work with states and definitions
// without pulling in the execution machinery.
package domain
