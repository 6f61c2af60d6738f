package fiado

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// BackupVersion tags the backup documents produced by Export.
const BackupVersion = "2.5"

// Backup is the portable representation of a whole ledger.
type Backup struct {
	Users      []User     `json:"users"`
	Customers  []Customer `json:"customers"`
	Expenses   []Expense  `json:"expenses"`
	Version    string     `json:"version"`
	ExportedAt string     `json:"exportedAt"`
}

// Export collects every user, customer and expense into a backup document.
// User passwords are not exported.
func (l *Ledger) Export(ctx context.Context) (*Backup, error) {
	users, err := l.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	customers, err := l.Customers(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := l.Expenses(ctx)
	if err != nil {
		return nil, err
	}
	return &Backup{
		Users:      users,
		Customers:  customers,
		Expenses:   expenses,
		Version:    BackupVersion,
		ExportedAt: l.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// EncodeBackup writes the backup document as indented JSON.
func EncodeBackup(w io.Writer, b *Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("could not encode backup: %w", err)
	}
	return nil
}

// DecodeBackup reads a backup document. Unknown top level keys are ignored.
func DecodeBackup(r io.Reader) (*Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("could not decode backup: %w", err)
	}
	return &b, nil
}

// ImportOptions controls how a backup is merged into the ledger.
type ImportOptions struct {
	// Deduplicate merges incoming customers into matching existing ones,
	// skipping transactions already present, instead of replacing or inserting
	// whole records.
	Deduplicate bool
}

// ImportReport tells what an import committed.
type ImportReport struct {
	Customers    int `json:"customers"`    // customer records written
	Expenses     int `json:"expenses"`     // expense records written
	Transactions int `json:"transactions"` // transactions added by a deduplicating import
	Skipped      int `json:"skipped"`      // duplicate transactions skipped
}

// Import merges a backup document into the ledger, one record at a time.
//
// By default every customer is saved as is: one with a known id replaces the
// stored record, any other is inserted. Nothing is deduplicated, importing id
// less customers twice creates them twice. Values are restored as they were
// stored, malformed amounts and missing dates included, while names and types
// are still checked. The first failure stops the import, records written
// before it stay written, and the report tells which.
// Users are not imported.
func (l *Ledger) Import(ctx context.Context, b *Backup, opts ImportOptions) (ImportReport, error) {
	var report ImportReport
	var existing []Customer
	// backups carry what the store held, malformed values included.
	restore := l.policy
	restore.lenient = true
	if opts.Deduplicate {
		var err error
		if existing, err = l.Customers(ctx); err != nil {
			return report, err
		}
	}

	for _, c := range b.Customers {
		if opts.Deduplicate {
			if i := matchCustomer(existing, c); i >= 0 {
				added, skipped := mergeTransactions(&existing[i], c.Transactions)
				merged := existing[i]
				merged.Name, merged.PhonePrimary = c.Name, c.PhonePrimary
				merged.CPF, merged.PhoneSecondary, merged.Address, merged.Notes = c.CPF, c.PhoneSecondary, c.Address, c.Notes
				if err := l.saveCustomer(ctx, &merged, restore); err != nil {
					return report, fmt.Errorf("import stopped after %d customers: %w", report.Customers, err)
				}
				existing[i] = merged
				report.Customers++
				report.Transactions += added
				report.Skipped += skipped
				continue
			}
		}
		if err := l.saveCustomer(ctx, &c, restore); err != nil {
			return report, fmt.Errorf("import stopped after %d customers: %w", report.Customers, err)
		}
		if opts.Deduplicate {
			existing = append(existing, c)
			report.Transactions += len(c.Transactions)
		}
		report.Customers++
	}

	for _, e := range b.Expenses {
		if err := l.saveExpense(ctx, &e, restore); err != nil {
			return report, fmt.Errorf("import stopped after %d expenses: %w", report.Expenses, err)
		}
		report.Expenses++
	}
	log.Info().Int("customers", report.Customers).Int("expenses", report.Expenses).Int("skipped", report.Skipped).Bool("deduplicate", opts.Deduplicate).Msg("backup imported")
	return report, nil
}

// matchCustomer finds c in customers by id, then by name and primary phone.
func matchCustomer(customers []Customer, c Customer) int {
	for i, e := range customers {
		if c.ID != "" && e.ID == c.ID {
			return i
		}
	}
	for i, e := range customers {
		if strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(c.Name)) &&
			digits(e.PhonePrimary) == digits(c.PhonePrimary) {
			return i
		}
	}
	return -1
}

// mergeTransactions appends to c the incoming transactions it does not
// already have, matched by id or by content.
func mergeTransactions(c *Customer, incoming []Transaction) (added, skipped int) {
	ids := make(map[string]struct{}, len(c.Transactions))
	contents := make(map[string]int, len(c.Transactions))
	for _, tx := range c.Transactions {
		ids[tx.ID] = struct{}{}
		contents[tx.fingerprint()]++
	}
	for _, tx := range incoming {
		if _, ok := ids[tx.ID]; ok {
			skipped++
			continue
		}
		if fp := tx.fingerprint(); contents[fp] > 0 {
			contents[fp]--
			skipped++
			continue
		}
		if tx.ID == "" {
			tx.ID = newTransactionID()
		}
		ids[tx.ID] = struct{}{}
		c.Transactions = append(c.Transactions, tx)
		added++
	}
	return added, skipped
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
