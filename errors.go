package fiado

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned by a DocumentStore when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned by a DocumentStore when a write expected a version
	// that is no longer the stored one.
	ErrConflict = errors.New("document was modified concurrently")

	// ErrOutstandingBalance prevents deleting a customer that still owes or is owed money.
	ErrOutstandingBalance = errors.New("customer balance is not settled")
	// ErrMalformedAmount rejects a value that is not a number.
	ErrMalformedAmount = errors.New("amount is not a number")
	// ErrNegativeAmount rejects a negative value when the policy forbids it.
	ErrNegativeAmount = errors.New("amount is negative")
	// ErrInvalid wraps schema validation failures.
	ErrInvalid = errors.New("invalid record")
	// ErrSelfDelete prevents a user from deleting their own account.
	ErrSelfDelete = errors.New("a user cannot delete itself")
	// ErrUsernameTaken rejects a registration for an existing username.
	ErrUsernameTaken = errors.New("username already registered")
)

// Policy holds the write-time rules of a Ledger.
type Policy struct {
	// RejectNegative refuses transactions and expenses with a negative value.
	RejectNegative bool

	// lenient accepts values and dates that were already stored, even
	// malformed or missing, so that restoring a backup keeps them as is.
	lenient bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())
