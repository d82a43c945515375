package service

import (
	"errors"
	"fmt"

	"github.com/shaharia-lab/mailbatch/internal/notification"
)

// NotFoundError means a template file or directory recipient is missing.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Resource, e.ID)
}

// ConflictError means the directory already holds a recipient with this address.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already registered", e.Resource, e.ID)
}

// ValidationError rejects a request before any recipient is contacted. When
// the dispatcher itself rejected the batch, Err holds its *notification.ArgumentError.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// fromDispatchError turns a dispatcher argument rejection into a
// *ValidationError. Other errors, session failures included, pass through.
func fromDispatchError(err error) error {
	var argErr *notification.ArgumentError
	if errors.As(err, &argErr) {
		return &ValidationError{Field: argErr.Field, Message: argErr.Message, Err: err}
	}
	return err
}
