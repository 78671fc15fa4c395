/*
Package session orchestrates persisted execution states.

A State must be driven by exactly one tree activation at a time. The
Manager enforces that discipline: per-uid mutexes serialize access
within the process, and an optional distributed locker extends the
guarantee across replicas.
*/
package session
