package routine

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("routine not found")
	// ErrLocked is returned when a routine that has started counting down is
	// edited. It must be deleted and recreated instead.
	ErrLocked   = errors.New("routine has elapsed time and can no longer be edited")
	ErrRunning  = errors.New("routine is running")
	ErrFinished = errors.New("routine has already finished")
)

// ValidationError rejects user input before anything is changed or sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
