package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fiado"
	"github.com/google/subcommands"
)

// transactionCmd records a sale or a payment, depending on typ.
type transactionCmd struct {
	typ         fiado.TransactionType
	customer    string
	date        string
	description string
}

func (c *transactionCmd) Name() string { return strings.ToLower(string(c.typ)) }
func (c *transactionCmd) Synopsis() string {
	if c.typ == fiado.Payment {
		return "record a payment received from a customer"
	}
	return "record a sale on credit to a customer"
}
func (c *transactionCmd) Usage() string {
	return fmt.Sprintf(`fiado %s -c <customer> [-d <date>] [-desc <description>] <value>

  Records a %s in the customer's account. The value is a decimal number,
  like 150 or 99.95. The date defaults to today.
`, c.Name(), c.Name())
}

func (c *transactionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.customer, "c", "", "Customer id or name.")
	f.StringVar(&c.date, "d", "", "Transaction date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&c.description, "desc", "", "Description of the transaction.")
}

func (c *transactionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.customer == "" || f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: %s expects -c and exactly one value\n", c.Name())
		return subcommands.ExitUsageError
	}
	value, err := fiado.ParseAmount(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing value: %v\n", err)
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	day, err := parseDay(l, c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	customer, err := findCustomer(ctx, l, c.customer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	tx, ok, err := l.AddTransaction(ctx, customer.ID, c.description, value, c.typ, day)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding %s: %v\n", c.Name(), err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: customer %q no longer exists\n", customer.ID)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Recorded %s %s of %s for %s\n", c.Name(), tx.ID, tx.Value, customer.Name)
	return subcommands.ExitSuccess
}

type editTxCmd struct {
	customer    string
	date        string
	description string
	value       string
	typ         string
}

func (*editTxCmd) Name() string     { return "edit-tx" }
func (*editTxCmd) Synopsis() string { return "edit a transaction" }
func (*editTxCmd) Usage() string {
	return `fiado edit-tx -c <customer> [-d <date>] [-desc <description>] [-value <value>] [-type <SALE|PAYMENT>] <transaction id>

  Edits a transaction in place. Flags left empty keep the current value.
`
}

func (c *editTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.customer, "c", "", "Customer id or name.")
	f.StringVar(&c.date, "d", "", "New date (YYYY-MM-DD).")
	f.StringVar(&c.description, "desc", "", "New description.")
	f.StringVar(&c.value, "value", "", "New value.")
	f.StringVar(&c.typ, "type", "", "New type: SALE or PAYMENT.")
}

func (c *editTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.customer == "" || f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: edit-tx expects -c and exactly one transaction id")
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	customer, err := findCustomer(ctx, l, c.customer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	tx, ok := customer.Transaction(f.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %s has no transaction %q\n", customer.Name, f.Arg(0))
		return subcommands.ExitFailure
	}
	if c.date != "" {
		if tx.Date, err = parseDay(l, c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.description != "" {
		tx.Description = c.description
	}
	if c.value != "" {
		if tx.Value, err = fiado.ParseAmount(c.value); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing value: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.typ != "" {
		if tx.Type, err = fiado.ParseTransactionType(c.typ); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing type: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	ok, err = l.EditTransaction(ctx, customer.ID, tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error editing transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: transaction %q no longer exists\n", tx.ID)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Edited transaction %s\n", tx.ID)
	return subcommands.ExitSuccess
}

type deleteTxCmd struct {
	customer string
}

func (*deleteTxCmd) Name() string     { return "delete-tx" }
func (*deleteTxCmd) Synopsis() string { return "delete a transaction" }
func (*deleteTxCmd) Usage() string {
	return `fiado delete-tx -c <customer> <transaction id>

  Deletes a transaction from the customer's history.
`
}

func (c *deleteTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.customer, "c", "", "Customer id or name.")
}

func (c *deleteTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.customer == "" || f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: delete-tx expects -c and exactly one transaction id")
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	customer, err := findCustomer(ctx, l, c.customer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ok, err := l.DeleteTransaction(ctx, customer.ID, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: customer %q no longer exists\n", customer.ID)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted transaction %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
