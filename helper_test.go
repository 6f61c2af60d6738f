package fiado

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/etnz/fiado/date"
)

// testToday is the date seen by test ledgers.
var testToday = date.New(2025, time.June, 30)

// newTestLedger returns a ledger on a fresh memory store, frozen at testToday.
func newTestLedger(t *testing.T, policy Policy) *Ledger {
	t.Helper()
	l := NewLedger(NewMemoryStore(), policy)
	l.now = func() time.Time { return time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC) }
	return l
}

func sale(day string, value float64) Transaction {
	return Transaction{ID: newTransactionID(), Date: date.MustParse(day), Value: A(value), Type: Sale}
}

func payment(day string, value float64) Transaction {
	return Transaction{ID: newTransactionID(), Date: date.MustParse(day), Value: A(value), Type: Payment}
}

// malformed returns an amount read from a non numeric JSON value.
func malformed(t *testing.T, raw string) Amount {
	t.Helper()
	var a Amount
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	if !a.IsMalformed() {
		t.Fatalf("%s should be malformed", raw)
	}
	return a
}

// addCustomer saves a customer with the given transactions.
func addCustomer(t *testing.T, l *Ledger, name string, txs ...Transaction) Customer {
	t.Helper()
	c := Customer{Name: name, PhonePrimary: "11 5555-0000", Transactions: txs}
	if err := l.SaveCustomer(t.Context(), &c); err != nil {
		t.Fatalf("SaveCustomer(%s): %v", name, err)
	}
	return c
}
