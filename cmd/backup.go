package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/sheet"
	"github.com/google/subcommands"
)

type exportCmd struct {
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the whole ledger" }
func (*exportCmd) Usage() string {
	return `fiado export [-format json|xlsx] [-o <file>]

  Exports users, customers and expenses. The json format is a backup that
  import reads back. The xlsx format is a spreadsheet for reading only.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "json", "Output format: json or xlsx.")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the standard output.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "json" && c.format != "xlsx" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	b, err := l.Export(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	var w io.Writer = stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}
	if c.format == "xlsx" {
		err = sheet.Write(w, b, l.Today())
	} else {
		err = fiado.EncodeBackup(w, b)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing export: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type importCmd struct {
	dedup bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a json backup" }
func (*importCmd) Usage() string {
	return `fiado import [-dedup] <backup.json>

  Imports the customers and expenses of a backup. Customers with a known id
  replace the stored ones, others are inserted. With -dedup, customers
  matching an existing one by id, or by name and phone, are merged instead, and their
  known transactions are skipped. Users are not imported.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dedup, "dedup", false, "Merge into matching customers instead of inserting duplicates.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: import expects exactly one file")
		return subcommands.ExitUsageError
	}
	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening backup: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()
	b, err := fiado.DecodeBackup(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading backup: %v\n", err)
		return subcommands.ExitFailure
	}

	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	report, err := l.Import(ctx, b, fiado.ImportOptions{Deduplicate: c.dedup})
	fmt.Fprintf(stdout, "Imported %d customers and %d expenses", report.Customers, report.Expenses)
	if c.dedup {
		fmt.Fprintf(stdout, ", %d transactions added, %d skipped", report.Transactions, report.Skipped)
	}
	fmt.Fprintln(stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing backup: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
