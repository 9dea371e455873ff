// Package repository is the SQLite persistence layer.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist or is not visible to the
// requesting user.
var ErrNotFound = errors.New("not found")
