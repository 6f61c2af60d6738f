package fiado

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/fiado/date"
	"github.com/google/uuid"
)

// TransactionType is either a sale or a payment.
type TransactionType string

const (
	// Sale is a debit: it increases the amount the customer owes.
	Sale TransactionType = "SALE"
	// Payment is a credit: it decreases the amount the customer owes.
	Payment TransactionType = "PAYMENT"
)

// ParseTransactionType reads a transaction type, case insensitive. The
// scanner's "sale" and "payment" are accepted too.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SALE":
		return Sale, nil
	case "PAYMENT":
		return Payment, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q: want SALE or PAYMENT", s)
	}
}

// Transaction is a single entry in a customer's account.
type Transaction struct {
	ID          string          `json:"id" validate:"required"`
	Date        date.Date       `json:"date"`
	Description string          `json:"description"`
	Value       Amount          `json:"value"`
	Type        TransactionType `json:"type" validate:"oneof=SALE PAYMENT"`
	CreatedAt   Instant         `json:"createdAt"`
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("date", t.Date)
	w.Append("description", t.Description)
	w.Append("value", t.Value)
	w.Append("type", t.Type)
	w.Append("createdAt", t.CreatedAt)
	return w.MarshalJSON()
}

// Equal reports whether both transactions have the same content.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID && t.Date == o.Date && t.Description == o.Description &&
		t.Value.Equal(o.Value) && t.Type == o.Type && t.CreatedAt == o.CreatedAt
}

// fingerprint identifies the content of a transaction regardless of its id.
func (t Transaction) fingerprint() string {
	return strings.Join([]string{
		t.Date.String(),
		strings.ToLower(strings.TrimSpace(t.Description)),
		t.Value.Decimal().StringFixed(2),
		string(t.Type),
	}, "|")
}

// Validate checks the transaction fields before it is written.
func (t Transaction) Validate(p Policy) error {
	var errs error
	if err := validate.Struct(t); err != nil {
		errs = errors.Join(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	switch {
	case p.lenient:
	case t.Date.IsZero():
		errs = errors.Join(errs, fmt.Errorf("%w: date is missing", ErrInvalid))
	}
	switch {
	case p.lenient:
	case t.Value.IsMalformed():
		errs = errors.Join(errs, fmt.Errorf("%w: %s", ErrMalformedAmount, t.Value.raw))
	case p.RejectNegative && t.Value.IsNegative():
		errs = errors.Join(errs, fmt.Errorf("%w: %s", ErrNegativeAmount, t.Value.Decimal()))
	}
	if errs != nil {
		return fmt.Errorf("invalid transaction %q: %w", t.ID, errs)
	}
	return nil
}

// Entry is a candidate transaction, without identity, as produced by a scanner.
type Entry struct {
	Date        date.Date       `json:"date"`
	Description string          `json:"description"`
	Value       Amount          `json:"value"`
	Type        TransactionType `json:"type"`
}

// newTransactionID returns a fresh id: a time ordered UUID with random bits.
func newTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// transactionNamespace scopes content derived transaction ids.
var transactionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/fiado/transaction"))

// contentID derives a stable transaction id from the batch it belongs to and its content.
// n distinguishes identical entries within the same batch.
func contentID(customerID, token string, e Entry, n int) string {
	tx := Transaction{Date: e.Date, Description: e.Description, Value: e.Value, Type: e.Type}
	name := fmt.Sprintf("%s\x00%s\x00%s\x00%d", customerID, token, tx.fingerprint(), n)
	return uuid.NewSHA1(transactionNamespace, []byte(name)).String()
}

var _ json.Marshaler = Transaction{}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
// It is lenient: an unreadable date leaves a zero date instead of failing the
// whole customer document.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	var temp struct {
		plain
		Date json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = Transaction(temp.plain)
	if len(temp.Date) > 0 {
		var d date.Date
		if err := json.Unmarshal(temp.Date, &d); err == nil {
			t.Date = d
		}
	}
	return nil
}
