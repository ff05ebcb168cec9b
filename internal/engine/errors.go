package engine

import "errors"

var (
	// ErrPathError indicates the configured root is missing or unreadable.
	ErrPathError = errors.New("root path error")

	// ErrNoRoot indicates no root has been set.
	ErrNoRoot = errors.New("no root set")

	// ErrOverwriteRefused indicates a file already exists at an apply
	// destination.
	ErrOverwriteRefused = errors.New("destination exists (overwrite refused)")

	// ErrInvalidStatus indicates an unknown or disallowed status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidMode indicates an apply mode other than move or copy.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrNotFound indicates an item was not found in the registry.
	ErrNotFound = errors.New("not found")

	// ErrStateUnreadable indicates the persisted registry could not be loaded.
	ErrStateUnreadable = errors.New("state unreadable")
)
