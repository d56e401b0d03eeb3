package service

import "errors"

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports malformed or missing input. Its message is safe to
// show to clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthenticated    = errors.New("not authorized")
	ErrExpenseNotFound    = errors.New("expense not found")
)

var (
	ErrAmountNotPositive = newValidationError("amount", "amount must be greater than 0")
	ErrAmountPrecision   = newValidationError("amount", "amount must have at most 2 decimal places")
	ErrAmountTooLarge    = newValidationError("amount", "amount is too large")
	ErrAmountOutOfRange  = newValidationError("amount", "amount is out of range")
	ErrDateInFuture      = newValidationError("date", "date cannot be in the future")
	ErrNoExpenseIDs      = newValidationError("expenseIds", "please provide expense ids to delete")
)
