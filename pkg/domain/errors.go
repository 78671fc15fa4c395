package domain

import "errors"

// ErrSessionNotFound is returned by state stores when a uid has no
// persisted state.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownStatusCode is returned when deserializing a state that
// carries a status code outside the stable 0..3 range.
var ErrUnknownStatusCode = errors.New("unknown status code")
