package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("store not found")
	ErrUnconfigured = errors.New("repository unconfigured")
)
