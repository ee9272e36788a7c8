package domain

import (
	"errors"
	"fmt"
)

// ErrSurfaceUnready is returned when the drawing surface has not been mounted yet.
// Callers treat it as a transient, silent condition.
var ErrSurfaceUnready = errors.New("drawing surface not ready")

// ErrEncoding is returned when the raster cannot be serialised.
var ErrEncoding = errors.New("error creating image file")

// ErrUnknownBrush is returned for a brush outside the closed palette.
var ErrUnknownBrush = errors.New("unknown brush")

// ErrInvalidSize is returned for a brush size outside [MinBrushSize, MaxBrushSize].
var ErrInvalidSize = errors.New("invalid brush size")

// ErrKeyNotFound is returned when a key is absent from a key/value store.
var ErrKeyNotFound = errors.New("key not found")

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSessionID is returned for a session ID that cannot scope keys.
var ErrInvalidSessionID = errors.New("invalid session id")

// BackendRejectedError means the search backend answered with a non-success status.
type BackendRejectedError struct {
	Status int
	Detail string
}

func (e *BackendRejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("search backend rejected sketch (status %d)", e.Status)
	}
	return fmt.Sprintf("search backend rejected sketch (status %d): %s", e.Status, e.Detail)
}

// TransportError means the exchange with the backend did not complete.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("search backend unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
