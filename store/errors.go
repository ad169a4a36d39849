package store

import "errors"

var (
	// ErrNotFound is returned when no item exists at the requested key.
	ErrNotFound = errors.New("facet: item not found")
)
