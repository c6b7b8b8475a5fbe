package services

import (
	"errors"
	"fmt"
)

// Error taxonomy for the messaging engine. Handlers map these to HTTP
// codes; nothing below is ever collapsed into a generic failure.
var (
	ErrNotAParticipant     = errors.New("caller is not a participant in this conversation")
	ErrInvalidParticipants = errors.New("invalid conversation participants")
	ErrEmptyMessage        = errors.New("message body is empty")
	ErrNotFound            = errors.New("record not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// storeErr wraps a backing-store failure so callers can match
// ErrStoreUnavailable while the cause stays in the message.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
