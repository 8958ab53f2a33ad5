package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSchema           = errors.New("schema error")
	ErrValidation       = errors.New("validation error")
	ErrIO               = errors.New("io error")
	ErrTransactionState = errors.New("transaction state error")
	ErrStructural       = errors.New("structural error")
	ErrNotFound         = errors.New("not found")
)

func SchemaError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

// NotFoundError is a schema error about a missing table, field or index.
func NotFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrSchema, ErrNotFound, fmt.Sprintf(format, args...))
}

func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func TransactionStateError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransactionState, fmt.Sprintf(format, args...))
}

func StructuralError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructural, fmt.Sprintf(format, args...))
}

// IOError wraps an operating system failure. Both ErrIO and the cause stay matchable.
func IOError(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, cause)
}
