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

type expensesCmd struct{}

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "list the business expenses" }
func (*expensesCmd) Usage() string {
	return `fiado expenses

  Lists the expenses with their status: PENDING, OVERDUE or PAID.
`
}
func (*expensesCmd) SetFlags(f *flag.FlagSet) {}

func (*expensesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	expenses, err := l.Expenses(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing expenses: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderExpenses(renderer.NewExpenseList(expenses, l.Today())))
	return subcommands.ExitSuccess
}

// expenseCmd creates or replaces an expense.
type expenseCmd struct {
	id          string
	category    string
	description string
	value       string
	due         string
}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "create or update an expense" }
func (*expenseCmd) Usage() string {
	return `fiado expense [-id <id>] -cat <category> -due <date> [-desc <description>] <value>

  Records a bill to pay. With -id, the expense is updated: flags left empty
  keep their current value, and the value argument is optional.
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Id of the expense to update.")
	f.StringVar(&c.category, "cat", "", "Category, like rent or supplier.")
	f.StringVar(&c.description, "desc", "", "Description.")
	f.StringVar(&c.due, "due", "", "Due date (YYYY-MM-DD).")
}

func (c *expenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 || (c.id == "" && f.NArg() != 1) {
		fmt.Fprintln(os.Stderr, "Error: expense expects exactly one value")
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	var e fiado.Expense
	if c.id != "" {
		var ok bool
		if e, ok, err = l.Expense(ctx, c.id); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading expense: %v\n", err)
			return subcommands.ExitFailure
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no expense with id %q\n", c.id)
			return subcommands.ExitFailure
		}
	}
	if c.category != "" {
		e.Category = c.category
	}
	if c.description != "" {
		e.Description = c.description
	}
	if c.due != "" {
		if e.DueDate, err = parseDay(l, c.due); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing due date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if f.NArg() == 1 {
		if e.Value, err = fiado.ParseAmount(f.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing value: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if err := l.SaveExpense(ctx, &e); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving expense: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Saved expense %s (%s), %s\n", e.Description, e.ID, e.Status)
	return subcommands.ExitSuccess
}

type payExpenseCmd struct {
	date  string
	value string
}

func (*payExpenseCmd) Name() string     { return "pay-expense" }
func (*payExpenseCmd) Synopsis() string { return "record the payment of an expense" }
func (*payExpenseCmd) Usage() string {
	return `fiado pay-expense [-d <date>] [-value <value>] <expense id>

  Marks an expense as paid. The value defaults to the expense value and the
  date to today.
`
}

func (c *payExpenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Payment date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&c.value, "value", "", "Paid value. Defaults to the expense value.")
}

func (c *payExpenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: pay-expense expects exactly one expense id")
		return subcommands.ExitUsageError
	}
	var value *fiado.Amount
	if c.value != "" {
		v, err := fiado.ParseAmount(c.value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing value: %v\n", err)
			return subcommands.ExitUsageError
		}
		value = &v
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
	ok, err := l.PayExpense(ctx, f.Arg(0), day, value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error paying expense: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no expense with id %q\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Paid expense %s on %s\n", f.Arg(0), day)
	return subcommands.ExitSuccess
}

type deleteExpenseCmd struct{}

func (*deleteExpenseCmd) Name() string     { return "delete-expense" }
func (*deleteExpenseCmd) Synopsis() string { return "delete an expense" }
func (*deleteExpenseCmd) Usage() string {
	return `fiado delete-expense <expense id>
`
}
func (*deleteExpenseCmd) SetFlags(f *flag.FlagSet) {}

func (*deleteExpenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: delete-expense expects exactly one expense id")
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	ok, err := l.DeleteExpense(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting expense: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no expense with id %q\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted expense %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
