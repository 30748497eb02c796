// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrEmailInUse is returned when an insert or update collides with the
// uniqueness constraint on accounts.email. Handlers should translate this
// into an HTTP 409 response.
var ErrEmailInUse = errors.New("email already in use")

// ErrCodeExists is returned when a generated user code collides with an
// existing account. Callers should regenerate and retry.
var ErrCodeExists = errors.New("user code already exists")

// ErrTokenAlreadyUsed is returned when the one-time enlistment token for an
// account has already been consumed. The consume is a conditional update,
// so under concurrent requests at most one caller avoids this error.
var ErrTokenAlreadyUsed = errors.New("token already used")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as revoking an invite that is no longer SENT.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
