package usecase

import "errors"

// Sentinel errors services wrap with fmt.Errorf("%w: detail", ...). The HTTP
// layer maps them onto response status codes.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
