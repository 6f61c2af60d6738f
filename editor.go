package fiado

import (
	"context"
	"slices"

	"github.com/etnz/fiado/date"
	"github.com/rs/zerolog/log"
)

// AddTransaction appends a new transaction to a customer's history.
//
// It returns false if the customer does not exist.
func (l *Ledger) AddTransaction(ctx context.Context, customerID, description string, value Amount, typ TransactionType, day date.Date) (Transaction, bool, error) {
	tx := Transaction{
		ID:          newTransactionID(),
		Date:        day,
		Description: description,
		Value:       value,
		Type:        typ,
		CreatedAt:   InstantOf(l.now()),
	}
	if err := tx.Validate(l.policy); err != nil {
		return Transaction{}, false, err
	}
	found, err := l.updateCustomer(ctx, customerID, func(c *Customer) (bool, error) {
		c.Transactions = append(c.Transactions, tx)
		return true, nil
	})
	if err != nil || !found {
		return Transaction{}, found, err
	}
	return tx, true, nil
}

// EditTransaction replaces a transaction, identified by its id, keeping its
// position in the history.
//
// It returns false, and writes nothing, if either the customer or the
// transaction does not exist.
func (l *Ledger) EditTransaction(ctx context.Context, customerID string, tx Transaction) (bool, error) {
	if err := tx.Validate(l.policy); err != nil {
		return false, err
	}
	var edited bool
	found, err := l.updateCustomer(ctx, customerID, func(c *Customer) (bool, error) {
		i := slices.IndexFunc(c.Transactions, func(old Transaction) bool { return old.ID == tx.ID })
		if i < 0 {
			return false, nil
		}
		if tx.CreatedAt == 0 {
			tx.CreatedAt = c.Transactions[i].CreatedAt
		}
		c.Transactions[i] = tx
		edited = true
		return true, nil
	})
	return found && edited, err
}

// DeleteTransaction removes a transaction from a customer's history.
//
// It returns false if the customer does not exist. Deleting an unknown
// transaction id succeeds without writing anything.
func (l *Ledger) DeleteTransaction(ctx context.Context, customerID, transactionID string) (bool, error) {
	return l.updateCustomer(ctx, customerID, func(c *Customer) (bool, error) {
		n := len(c.Transactions)
		c.Transactions = slices.DeleteFunc(c.Transactions, func(tx Transaction) bool { return tx.ID == transactionID })
		return len(c.Transactions) != n, nil
	})
}

// IngestReport summarizes a batch ingest.
type IngestReport struct {
	Added   []Transaction `json:"added"`
	Skipped int           `json:"skipped"` // entries already ingested by a previous attempt
}

// IngestTransactions appends a batch of entries, typically read by a Scanner,
// in a single write.
//
// Each entry gets an id derived from the customer, the batch token and its
// content. Entries already present are skipped, so retrying a batch with the
// same token never duplicates history. It returns false if the customer does
// not exist.
func (l *Ledger) IngestTransactions(ctx context.Context, customerID string, entries []Entry, token string) (IngestReport, bool, error) {
	created := InstantOf(l.now())
	txs := make([]Transaction, 0, len(entries))
	seen := make(map[string]int)
	for _, e := range entries {
		tx := Transaction{Date: e.Date, Description: e.Description, Value: e.Value, Type: e.Type, CreatedAt: created}
		n := seen[tx.fingerprint()]
		seen[tx.fingerprint()] = n + 1
		tx.ID = contentID(customerID, token, e, n)
		if err := tx.Validate(l.policy); err != nil {
			return IngestReport{}, false, err
		}
		txs = append(txs, tx)
	}

	var report IngestReport
	found, err := l.updateCustomer(ctx, customerID, func(c *Customer) (bool, error) {
		for _, tx := range txs {
			if _, exists := c.Transaction(tx.ID); exists {
				report.Skipped++
				continue
			}
			c.Transactions = append(c.Transactions, tx)
			report.Added = append(report.Added, tx)
		}
		return len(report.Added) > 0, nil
	})
	if err != nil || !found {
		return IngestReport{}, found, err
	}
	log.Debug().Str("customer", customerID).Str("token", token).Int("added", len(report.Added)).Int("skipped", report.Skipped).Msg("batch ingested")
	return report, true, nil
}
