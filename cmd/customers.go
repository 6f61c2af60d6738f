package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/etnz/fiado/renderer"
	"github.com/google/subcommands"
)

type customersCmd struct{}

func (*customersCmd) Name() string     { return "customers" }
func (*customersCmd) Synopsis() string { return "list customers and their balance" }
func (*customersCmd) Usage() string {
	return `fiado customers

  Lists all customers sorted by name, with their balance and overdue status.
`
}
func (*customersCmd) SetFlags(f *flag.FlagSet) {}

func (*customersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	customers, err := l.Customers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing customers: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderCustomers(renderer.NewCustomerList(customers, l.Today())))
	return subcommands.ExitSuccess
}

// customerCmd creates or updates a customer.
type customerCmd struct {
	id             string
	name           string
	cpf            string
	phone          string
	phoneSecondary string
	address        string
	notes          string
}

func (*customerCmd) Name() string     { return "customer" }
func (*customerCmd) Synopsis() string { return "create or update a customer" }
func (*customerCmd) Usage() string {
	return `fiado customer [-id <id>] -name <name> -phone <phone> [-cpf <cpf>] [-phone2 <phone>] [-address <address>] [-notes <notes>]

  Creates a customer, or updates the customer with the given id.
  When updating, flags left empty keep their current value.
`
}

func (c *customerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Id of the customer to update. Empty creates a new customer.")
	f.StringVar(&c.name, "name", "", "Customer name.")
	f.StringVar(&c.cpf, "cpf", "", "Customer CPF.")
	f.StringVar(&c.phone, "phone", "", "Primary phone number.")
	f.StringVar(&c.phoneSecondary, "phone2", "", "Secondary phone number.")
	f.StringVar(&c.address, "address", "", "Address.")
	f.StringVar(&c.notes, "notes", "", "Free notes.")
}

func (c *customerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	var customer fiado.Customer
	if c.id != "" {
		var ok bool
		customer, ok, err = l.Customer(ctx, c.id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading customer: %v\n", err)
			return subcommands.ExitFailure
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no customer with id %q\n", c.id)
			return subcommands.ExitFailure
		}
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&customer.Name, c.name)
	set(&customer.CPF, c.cpf)
	set(&customer.PhonePrimary, c.phone)
	set(&customer.PhoneSecondary, c.phoneSecondary)
	set(&customer.Address, c.address)
	set(&customer.Notes, c.notes)

	if err := l.SaveCustomer(ctx, &customer); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving customer: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Saved customer %s (%s)\n", customer.Name, customer.ID)
	return subcommands.ExitSuccess
}

type showCmd struct {
	json bool
	from string
	to   string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "show a customer and its transactions" }
func (*showCmd) Usage() string {
	return `fiado show [-json] [-from <date>] [-to <date>] <customer>

  Shows a customer's details, balance and transactions, most recent first.
  The customer is given by id or by name. -from and -to limit the
  transactions listed, the balance always covers the whole history.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the customer record as JSON.")
	f.StringVar(&c.from, "from", "", "List transactions from this date (YYYY-MM-DD).")
	f.StringVar(&c.to, "to", "", "List transactions up to this date (YYYY-MM-DD).")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: show expects exactly one customer")
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	customer, err := findCustomer(ctx, l, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(customer)
	}
	var period date.Range
	for _, b := range []struct {
		flag string
		dst  *date.Date
	}{{c.from, &period.From}, {c.to, &period.To}} {
		if b.flag == "" {
			continue
		}
		if *b.dst, err = date.Parse(b.flag); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	printMarkdown(renderer.RenderStatement(renderer.NewStatement(customer, l.Today()).Within(period)))
	return subcommands.ExitSuccess
}

type deleteCustomerCmd struct{}

func (*deleteCustomerCmd) Name() string     { return "delete-customer" }
func (*deleteCustomerCmd) Synopsis() string { return "delete a settled customer" }
func (*deleteCustomerCmd) Usage() string {
	return `fiado delete-customer <customer>

  Deletes a customer. Only customers whose balance is settled, within ten
  cents of zero, can be deleted.
`
}
func (*deleteCustomerCmd) SetFlags(f *flag.FlagSet) {}

func (*deleteCustomerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: delete-customer expects exactly one customer")
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	customer, err := findCustomer(ctx, l, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ok, err := l.DeleteCustomer(ctx, customer.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting customer: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: customer %q no longer exists\n", customer.ID)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted customer %s\n", customer.Name)
	return subcommands.ExitSuccess
}
