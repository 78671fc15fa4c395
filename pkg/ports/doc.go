// Package ports declares the persistence and coordination interfaces
// the engine core depends on. Adapters live under pkg/adapters; the
// exported contract suite keeps every StateStore implementation honest.
package ports
