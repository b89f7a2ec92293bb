package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrBookUnavailable = errors.New("book unavailable")
	ErrAlreadyReturned = errors.New("borrowing already returned")
	ErrNotBorrower     = errors.New("not the borrower")
	ErrBookInUse       = errors.New("book is referenced by borrowings")
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Invalidf builds an ErrInvalidInput error with a detail message.
func Invalidf(format string, args ...any) error {
	return invalidf(format, args...)
}
