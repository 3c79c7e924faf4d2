package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the service layer when a ticket id does not
// exist. Repositories report absence as a nil ticket instead.
var ErrNotFound = errors.New("ticket not found")

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError names the missing ticket. It matches ErrNotFound under
// errors.Is.
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ticket #%d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
