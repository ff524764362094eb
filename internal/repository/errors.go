// Package repository contains data access logic separated from HTTP
// handlers.  This file defines error values reused across multiple
// repositories so handlers can distinguish failure scenarios instead
// of guessing from a nil result.
package repository

import "errors"

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as a refresh-hash rotation losing a race or
// an invalid pickup status transition.  Handlers translate this into
// HTTP 409 or, for token rotation, an invalid-token response.
var ErrConflict = errors.New("conflict")
