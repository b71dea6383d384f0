package intake

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField       = errors.New("unknown field")
	ErrUnknownFeature     = errors.New("unknown feature")
	ErrUnknownColor       = errors.New("unknown color")
	ErrInvalidColorFormat = errors.New("invalid color format")
	ErrIndexOutOfRange    = errors.New("attachment index out of range")
	ErrTooManyAttachments = errors.New("too many attachments")
	ErrStoreClosed        = errors.New("attachment store closed")
	ErrAlreadyInFlight    = errors.New("submission already in flight")
	ErrDeliveryFailure    = errors.New("delivery failure")
	ErrNoDeliverer        = errors.New("no deliverer configured")
)

// DeliveryError wraps whatever the delivery call returned. It matches
// ErrDeliveryFailure with errors.Is and unwraps to the provider error.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	if e.Err == nil {
		return ErrDeliveryFailure.Error()
	}
	return fmt.Sprintf("%s: %v", ErrDeliveryFailure, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) Is(target error) bool {
	return target == ErrDeliveryFailure
}
