// Package node implements the execution units of a canopy behavior tree.
//
// Leaves perform concrete work against the execution state; controllers
// compose ordered children and decide what to run next based purely on
// the statuses the children returned, never on the state itself. That
// split keeps behaviors encapsulated in leaves while decision making
// lives in the tree structure, which is what makes subtrees cheap to
// rearrange and reuse.
//
// Every node is placed in a tree through a Wrapper, which carries the
// tree-position identity. One node instance may sit behind several
// wrappers at different positions; per-position status is stored in the
// execution state keyed by position id, so sharing instances is safe.
package node
