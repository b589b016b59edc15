// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between different failure scenarios
// without inspecting driver errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrUsernameExists is returned when an insert collides with the
// unique username index. Handlers should translate this into an HTTP
// 409 response.
var ErrUsernameExists = errors.New("username already exists")

// ErrHolidayExists is returned when a holiday insert collides with the
// unique day index.
var ErrHolidayExists = errors.New("holiday already exists for that day")
