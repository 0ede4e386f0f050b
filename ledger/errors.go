package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the package.
var (
	// ErrAccountExists is returned when registering a duplicate account name.
	ErrAccountExists = errors.New("account already exists")

	// ErrAccountNotFound is returned by lookups of unknown accounts.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnbalancedTransaction is returned when a real transaction whose
	// splits do not sum to zero is committed to the document. Templates are
	// held to the same invariant, but a template reaching the spawn factory
	// unbalanced is a programming error and panics instead.
	ErrUnbalancedTransaction = errors.New("transaction splits do not balance")
)

// ConversionError reports an unconvertible currency pair. The engine
// propagates it to the caller; it does not guess rates.
type ConversionError struct {
	Date Date
	From string
	To   string
	Err  error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("no conversion rate from %s to %s on %s", e.From, e.To, e.Date)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }
