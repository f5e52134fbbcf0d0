package domain

import (
	"errors"
	"fmt"
)

// The handler layer maps these to HTTP statuses. Only ErrValidation and
// ErrUnauthorized carry text meant for the subscriber.

// ErrNotFound means the billing system answered and holds no such record.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ErrExternalService means an upstream (IXC, status feed) could not serve
// the call. Err keeps the transport or decode cause for the logs.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout means an upstream call ran past its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("%s: deadline exceeded", e.Operation)
}

// ErrCircuitOpen means the breaker rejected the call without trying it.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("%s: circuit open", e.Service)
}

// IsUpstreamFailure reports whether err means the upstream could not answer,
// as opposed to answering "not found" or rejecting the input.
func IsUpstreamFailure(err error) bool {
	var (
		ext     *ErrExternalService
		timeout *ErrTimeout
		open    *ErrCircuitOpen
	)
	return errors.As(err, &ext) || errors.As(err, &timeout) || errors.As(err, &open)
}

// ErrValidation rejects bad input before any upstream call. Message is
// shown to the subscriber verbatim.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrForbidden means the token is valid but does not identify a subscriber.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return "forbidden: " + e.Action
}

// ErrUnauthorized means bad credentials or an unusable token. A non-empty
// Message is returned to the caller.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}
