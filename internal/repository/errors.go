// Package repository defines the persistence layer. The sentinel errors
// below let higher layers distinguish failure scenarios: handlers translate
// ErrNotFound into 404, ErrDuplicateUsername into 409, and ErrUnavailable
// into the degraded-mode behavior described by the content service.
package repository

import "errors"

// ErrNotFound is returned when no record matches the given identifier
var ErrNotFound = errors.New("record not found")

// ErrDuplicateUsername is returned when a case-insensitive username
// collision prevents a user insert
var ErrDuplicateUsername = errors.New("username already taken")

// ErrUnavailable is returned when the backing store is unreachable.
// Read paths degrade to fallback responses; write paths surface 503.
var ErrUnavailable = errors.New("backing store unavailable")
