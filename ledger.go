package fiado

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/etnz/fiado/date"
	"github.com/rs/zerolog/log"
)

// Ledger gives access to the customers, users and expenses persisted in a
// DocumentStore, and enforces the business rules on every write.
//
// A Ledger holds no state between calls: every read decodes the documents and
// recomputes balances.
type Ledger struct {
	docs   DocumentStore
	policy Policy
	now    func() time.Time
}

// NewLedger creates a Ledger on top of a document store.
func NewLedger(docs DocumentStore, policy Policy) *Ledger {
	return &Ledger{docs: docs, policy: policy, now: time.Now}
}

// Today returns the current date as seen by the ledger.
func (l *Ledger) Today() date.Date { return date.Of(l.now()) }

func decodeCustomer(d Document) (Customer, error) {
	var c Customer
	if err := json.Unmarshal(d.Data, &c); err != nil {
		return Customer{}, fmt.Errorf("customer %q is corrupted: %w", d.ID, err)
	}
	c.ID = d.ID
	c.version = d.Version
	return c, nil
}

// Customers lists all customers sorted by name, with fresh balances.
func (l *Ledger) Customers(ctx context.Context) ([]Customer, error) {
	docs, err := l.docs.List(ctx, Customers)
	if err != nil {
		return nil, fmt.Errorf("could not list customers: %w", err)
	}
	customers := make([]Customer, 0, len(docs))
	for _, d := range docs {
		c, err := decodeCustomer(d)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	slices.SortStableFunc(customers, func(a, b Customer) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return customers, nil
}

// Customer returns a single customer. It returns false if it does not exist.
func (l *Ledger) Customer(ctx context.Context, id string) (Customer, bool, error) {
	d, err := l.docs.Get(ctx, Customers, id)
	if errors.Is(err, ErrNotFound) {
		return Customer{}, false, nil
	}
	if err != nil {
		return Customer{}, false, fmt.Errorf("could not load customer %q: %w", id, err)
	}
	c, err := decodeCustomer(d)
	if err != nil {
		return Customer{}, false, err
	}
	return c, true, nil
}

// SaveCustomer validates and writes the whole customer record.
//
// A customer with an id replaces the document at that id, whatever it was. A
// customer without id is created and receives its new id, so do its
// transactions.
func (l *Ledger) SaveCustomer(ctx context.Context, c *Customer) error {
	return l.saveCustomer(ctx, c, l.policy)
}

func (l *Ledger) saveCustomer(ctx context.Context, c *Customer, p Policy) error {
	c.Transactions = slices.Clone(c.Transactions)
	if c.Transactions == nil {
		c.Transactions = []Transaction{}
	}
	for i := range c.Transactions {
		if c.Transactions[i].ID == "" {
			c.Transactions[i].ID = newTransactionID()
		}
	}
	c.Balance = Balance(c.Transactions)
	if err := c.Validate(p); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("could not encode customer %q: %w", c.Name, err)
	}

	var d Document
	if c.ID != "" {
		d, err = l.docs.Put(ctx, Customers, c.ID, data, AnyVersion)
	} else {
		d, err = l.docs.Create(ctx, Customers, data)
	}
	if err != nil {
		return fmt.Errorf("could not save customer %q: %w", c.Name, err)
	}
	c.ID, c.version = d.ID, d.Version
	log.Debug().Str("customer", c.ID).Str("balance", c.Balance.String()).Msg("customer saved")
	return nil
}

// DeleteCustomer removes a customer whose balance is settled.
//
// It returns false if the customer does not exist, and ErrOutstandingBalance
// if the customer still has a balance outside the zero tolerance band.
func (l *Ledger) DeleteCustomer(ctx context.Context, id string) (bool, error) {
	c, ok, err := l.Customer(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	if !c.IsSettled() {
		return false, fmt.Errorf("cannot delete %q with balance %s: %w", c.Name, c.Balance, ErrOutstandingBalance)
	}
	err = l.docs.Delete(ctx, Customers, id, c.version)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not delete customer %q: %w", id, err)
	}
	log.Debug().Str("customer", id).Msg("customer deleted")
	return true, nil
}

// updateCustomer performs a read-modify-write of a customer record.
//
// modify reports whether the record must be written. The write fails with
// ErrConflict if the record changed since it was read. found is false if the
// customer does not exist.
func (l *Ledger) updateCustomer(ctx context.Context, id string, modify func(*Customer) (bool, error)) (found bool, err error) {
	c, ok, err := l.Customer(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	write, err := modify(&c)
	if err != nil || !write {
		return true, err
	}
	c.Balance = Balance(c.Transactions)
	data, err := json.Marshal(c)
	if err != nil {
		return true, fmt.Errorf("could not encode customer %q: %w", c.Name, err)
	}
	if _, err := l.docs.Put(ctx, Customers, id, data, c.version); err != nil {
		return true, fmt.Errorf("could not update customer %q: %w", id, err)
	}
	log.Debug().Str("customer", id).Str("balance", c.Balance.String()).Int("transactions", len(c.Transactions)).Msg("customer updated")
	return true, nil
}
