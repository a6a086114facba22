package carousel

import "errors"

var (
	// ErrOutOfRange is returned by GoTo when the index is outside [0, Len()).
	ErrOutOfRange = errors.New("carousel: index out of range")

	// ErrLoading is returned when an operation requires the preload to
	// have resolved.
	ErrLoading = errors.New("carousel: preload in progress")

	// ErrRunning is returned by Load when the rotator is already rotating.
	ErrRunning = errors.New("carousel: rotator is running")

	// ErrInvalidSettings wraps every settings validation failure.
	ErrInvalidSettings = errors.New("carousel: invalid settings")
)
