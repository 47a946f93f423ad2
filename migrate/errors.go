package migrate

import "errors"

var (
	// ErrInvalidPoolSize is returned when PoolSize is <= 0
	ErrInvalidPoolSize = errors.New("pool size must be greater than 0")

	// ErrMissingRepository is returned when a target repository is nil
	ErrMissingRepository = errors.New("target repository is required")
)
