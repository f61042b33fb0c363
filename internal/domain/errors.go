package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAction = errors.New("invalid action: must be create or update")
	ErrQueueFull     = errors.New("delivery queue is at capacity")
)
