package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when the scheduler configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
