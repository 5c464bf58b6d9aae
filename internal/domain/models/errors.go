package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers unresolved transaction or account lookups.
	ErrNotFound = errors.New("not found")

	// ErrNotPending is returned when a lifecycle operation targets a
	// transaction already in a terminal state.
	ErrNotPending = errors.New("transaction is not pending")

	// ErrNoMatch is returned when the receiver-account matcher finds no
	// acceptable candidate.
	ErrNoMatch = errors.New("no matching receiving account")

	// ErrExtractionFailed is returned when the extraction collaborator
	// produced no usable record.
	ErrExtractionFailed = errors.New("receipt extraction failed")
)

// ValidationError covers malformed amounts and account-info input. It is
// rejected locally with no state mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientFundsError aborts a confirmation. It carries enough detail
// for manual remediation; the transaction stays pending and retryable.
type InsufficientFundsError struct {
	Currency string
	Bank     string
	Balance  float64
	Required float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s %s: balance %.2f, required %.2f, shortage %.2f",
		e.Currency, e.Bank, e.Balance, e.Required, e.Shortage())
}

func (e *InsufficientFundsError) Shortage() float64 {
	return e.Required - e.Balance
}
