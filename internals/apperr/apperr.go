// Package apperr defines the error taxonomy the store and services speak:
// NotFound, InvalidState, Validation and AllocatorFailure. Controllers map
// these onto HTTP statuses in one place instead of sprinkling status codes
// through the service layer.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	// KindNotFound covers both truly absent entities and entities not owned
	// by the caller. The two are conflated so a district probing another
	// district's assignment ids learns nothing.
	KindNotFound Kind = iota
	// KindInvalidState: the operation is not permitted in the entity's
	// current lifecycle state (assigning an unpublished template, saving
	// into a sent assignment, ...).
	KindInvalidState
	// KindValidation: the input breaks a business rule (missing required
	// fields, duplicate username).
	KindValidation
	// KindAllocatorFailure: the id counter could not be repaired. Fatal for
	// the triggering request.
	KindAllocatorFailure
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidState(msg string) error { return &Error{Kind: KindInvalidState, Message: msg} }
func Validation(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }

func AllocatorFailure(msg string, err error) error {
	return &Error{Kind: KindAllocatorFailure, Message: msg, Err: err}
}

// KindOf extracts the taxonomy kind, or ok=false for foreign errors.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// HTTPStatus maps an error to the status the request boundary should answer
// with. Foreign errors count as internal.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidState, KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
