package transport

import (
	"errors"
	"fmt"
)

// SerializationError is returned when an inbound record cannot be encoded
// to text.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize event: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// NewSerializationError wraps err as a SerializationError.
func NewSerializationError(err error) error {
	return &SerializationError{Err: err}
}

// PublishError is returned when the destination rejects an envelope or
// cannot be reached. Code is the destination's error code when it reported
// one.
type PublishError struct {
	Destination string
	Code        string
	Err         error
	Retryable   bool
}

func (e *PublishError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("publish to %s: %s: %v", e.Destination, e.Code, e.Err)
	}
	return fmt.Sprintf("publish to %s: %v", e.Destination, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// NewPublishError wraps err as a PublishError for destination.
func NewPublishError(destination string, err error) error {
	return &PublishError{Destination: destination, Err: err}
}

// IsRetryableError reports whether the destination marked the failure as
// transient. Nothing in this module retries; the trigger decides.
func IsRetryableError(err error) bool {
	var pubErr *PublishError
	if errors.As(err, &pubErr) {
		return pubErr.Retryable
	}
	return false
}
