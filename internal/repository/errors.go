package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would break a uniqueness constraint
	// (duplicate project name, duplicate record id within a project)
	ErrConflict = errors.New("conflict: entity already exists")

	// ErrOutOfRange is returned when a positional access falls outside a list
	ErrOutOfRange = errors.New("position out of range")
)
