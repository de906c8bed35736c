// Package repository defines the persistence boundary of the application.
// Sentinel error values let higher layers such as handlers distinguish
// between failure scenarios without inspecting driver-specific errors.
// For example, ErrEmailExists signals a unique-constraint violation on
// the email column, which handlers translate into an HTTP 409 response,
// while ErrNotFound covers every missing-row lookup.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no user row.  Handlers
// should never leak this distinction to unauthenticated callers; login
// and reset-request flows respond identically whether or not the row
// exists.
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert or update collides with the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert or update collides with
// the unique index on users.username.
var ErrUsernameExists = errors.New("username already exists")
