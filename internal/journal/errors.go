package journal

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mithrel/quire/internal/db"
)

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = db.ErrNotFound

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid input")

// ValidationError lists the violated constraints keyed by field name.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Fields.Error() }

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// asValidation converts an ozzo result into a *ValidationError, leaving
// internal errors untouched.
func asValidation(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}
