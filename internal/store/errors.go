package store

import "errors"

// ErrNotFound is returned when a lookup by natural key matches nothing.
var ErrNotFound = errors.New("not found")
