package fiado

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Customer is a credit account: its identity and its transaction history.
//
// Balance is a projection of Transactions. It is recomputed every time a
// customer is read or written, a stored balance is never trusted.
type Customer struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name" validate:"required"`
	CPF            string          `json:"cpf,omitempty"`
	PhonePrimary   string          `json:"phonePrimary" validate:"required"`
	PhoneSecondary string          `json:"phoneSecondary,omitempty"`
	Address        string          `json:"address,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Transactions   []Transaction   `json:"transactions"`
	Balance        decimal.Decimal `json:"balance"`

	version int64 // document version this customer was read at
}

// MarshalJSON implements the json.Marshaler interface for Customer.
func (c Customer) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", c.ID)
	w.Append("name", c.Name)
	w.Optional("cpf", c.CPF)
	w.Append("phonePrimary", c.PhonePrimary)
	w.Optional("phoneSecondary", c.PhoneSecondary)
	w.Optional("address", c.Address)
	w.Optional("notes", c.Notes)
	txs := c.Transactions
	if txs == nil {
		txs = []Transaction{}
	}
	w.Append("transactions", txs)
	w.Raw("balance", []byte(c.Balance.StringFixed(2)))
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Customer. The
// stored balance is ignored and recomputed from the transactions.
func (c *Customer) UnmarshalJSON(data []byte) error {
	type plain Customer
	var temp struct {
		plain
		Balance json.RawMessage `json:"balance"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*c = Customer(temp.plain)
	if c.Transactions == nil {
		c.Transactions = []Transaction{}
	}
	c.Balance = Balance(c.Transactions)
	return nil
}

// IsSettled reports whether the customer can be deleted: no history, or a
// balance inside the zero tolerance band.
func (c Customer) IsSettled() bool {
	return len(c.Transactions) == 0 || IsSettled(Balance(c.Transactions))
}

// Transaction returns the transaction with this id.
func (c Customer) Transaction(id string) (Transaction, bool) {
	for _, tx := range c.Transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// Validate checks the whole customer record before it is written.
func (c Customer) Validate(p Policy) error {
	var errs error
	if err := validate.Struct(c); err != nil {
		errs = errors.Join(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	for _, tx := range c.Transactions {
		errs = errors.Join(errs, tx.Validate(p))
	}
	if errs != nil {
		return fmt.Errorf("invalid customer %q: %w", c.Name, errs)
	}
	return nil
}
