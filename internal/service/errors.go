package service

import (
	"errors"
	"fmt"

	"github.com/hongminglow/credit-approval/internal/credit"
	"github.com/hongminglow/credit-approval/internal/storage"
)

var (
	// ErrDuplicatePhoneNumber reports a registration with a phone number that
	// already belongs to a customer.
	ErrDuplicatePhoneNumber = errors.New("phone number already registered")

	// ErrNotFound reports an unknown customer or loan id.
	ErrNotFound = storage.ErrNotFound

	// ErrInvalidLoanParameters reports a loan the engine cannot price.
	ErrInvalidLoanParameters = credit.ErrInvalidLoanParameters
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
