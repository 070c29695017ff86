package entity

import (
	"errors"
	"fmt"
)

// Fatal pipeline errors. A message failing with one of these is
// acknowledged so the broker does not redeliver it.
var (
	// ErrDecode means the notification payload is malformed. Retrying
	// cannot change the payload.
	ErrDecode = errors.New("notification decode failed")

	// ErrUnsupportedFormat means the source bytes could not be identified
	// or decoded as an image.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrNotFound means the source object vanished before processing.
	ErrNotFound = errors.New("source object not found")
)

// TransientStoreError marks an object-store failure (network, throttling)
// that is expected to succeed on redelivery.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// Retryable reports whether the message carrying the failed event should be
// left unacknowledged for broker redelivery. Anything that is not an
// explicit transient store failure is treated as fatal, including
// unexpected internal errors.
func Retryable(err error) bool {
	var transient *TransientStoreError
	return errors.As(err, &transient)
}
