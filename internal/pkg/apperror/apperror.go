// Package apperror holds the error taxonomy shared by usecases and transports.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInsufficientInventory
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindInsufficientInventory:
		return "InsufficientInventoryError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	default:
		return "InternalError"
	}
}

// Error is a classified failure. Ingredient is set only for KindInsufficientInventory.
type Error struct {
	Kind       Kind
	Message    string
	Ingredient string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InsufficientInventory names the ingredient whose stock cannot cover the demand.
func InsufficientInventory(ingredient string, required, available int64) *Error {
	return &Error{
		Kind:       KindInsufficientInventory,
		Message:    fmt.Sprintf("insufficient inventory for %s: required %d, available %d", ingredient, required, available),
		Ingredient: ingredient,
	}
}

// Conflict wraps a transient store failure the caller may retry.
func Conflict(err error) *Error {
	return &Error{Kind: KindConflict, Message: "transaction conflict, please retry", Err: err}
}

// KindOf reports the kind of err, KindInternal when it is not classified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
