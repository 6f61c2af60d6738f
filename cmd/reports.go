package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/renderer"
	"github.com/google/subcommands"
)

type overdueCmd struct {
	json bool
}

func (*overdueCmd) Name() string     { return "overdue" }
func (*overdueCmd) Synopsis() string { return "list customers with an overdue balance" }
func (*overdueCmd) Usage() string {
	return fmt.Sprintf(`fiado overdue [-json]

  Lists the customers who owe money and made no payment, or were never
  charged, for more than %d days. Most overdue first.
`, fiado.OverdueAfterDays)
}

func (c *overdueCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the list as JSON.")
}

func (c *overdueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	overdue := fiado.OverdueCustomers(customers, l.Today())
	if c.json {
		if overdue == nil {
			overdue = []fiado.OverdueCustomer{}
		}
		return printJSON(overdue)
	}
	printMarkdown(renderer.RenderOverdue(renderer.NewOverdueList(overdue, l.Today())))
	return subcommands.ExitSuccess
}

type dashboardCmd struct {
	json bool
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "summarize receivables, expenses and overdue accounts" }
func (*dashboardCmd) Usage() string {
	return `fiado dashboard [-json]

  Prints the totals of the business: receivables, sales and payments,
  expenses, the top debtors and the overdue accounts.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON.")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	expenses, err := l.Expenses(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing expenses: %v\n", err)
		return subcommands.ExitFailure
	}
	summary := fiado.Summarize(customers, expenses, l.Today())
	if c.json {
		return printJSON(summary)
	}
	printMarkdown(renderer.RenderDashboard(renderer.NewDashboard(summary, l.Today())))
	return subcommands.ExitSuccess
}
