package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/etnz/fiado/config"
	"github.com/etnz/fiado/scan"
	"github.com/google/subcommands"
)

// newScanner builds the scanner used by the scan command.
var newScanner = func(cfg *config.Config) scan.Scanner {
	return &scan.Gemini{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model}
}

type scanCmd struct {
	customer string
	commit   bool
	token    string
}

func (*scanCmd) Name() string     { return "scan" }
func (*scanCmd) Synopsis() string { return "read a notebook page into transactions" }
func (*scanCmd) Usage() string {
	return `fiado scan [-c <customer> -commit] [-token <token>] <image>

  Reads the photo of a credit notebook page and prints the transactions found.

  With -commit, the transactions are added to the customer's account. Scanning
  and committing the same image twice adds the transactions once: the batch
  is identified by a digest of the image bytes, or by -token.

  The model's reading is not deterministic, and a new photo of the same page
  has a new digest: re-scanning can add the page's entries a second time.
  When retrying a page, pass the same -token so entries read the same way are
  recognized. An entry read differently is still added, so check the history
  before committing a page that was already scanned.
`
}

func (c *scanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.customer, "c", "", "Customer id or name, required with -commit.")
	f.BoolVar(&c.commit, "commit", false, "Add the transactions found to the customer's account.")
	f.StringVar(&c.token, "token", "", "Batch token. Defaults to a digest of the image.")
}

func (c *scanCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || (c.commit && c.customer == "") {
		fmt.Fprintln(os.Stderr, "Error: scan expects exactly one image, and -c with -commit")
		return subcommands.ExitUsageError
	}
	image, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
		return subcommands.ExitFailure
	}
	l, cfg, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	entries, err := newScanner(cfg).Scan(ctx, image, http.DetectContentType(image))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	for _, e := range entries {
		fmt.Fprintf(stdout, "%s\t%-7s\t%s\t%s\n", e.Date, e.Type, e.Value, e.Description)
	}
	if !c.commit {
		return subcommands.ExitSuccess
	}

	customer, err := findCustomer(ctx, l, c.customer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	token := c.token
	if token == "" {
		sum := sha256.Sum256(image)
		token = hex.EncodeToString(sum[:16])
	}
	report, ok, err := l.IngestTransactions(ctx, customer.ID, entries, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: customer %q no longer exists\n", customer.ID)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Added %d transactions to %s, %d already present\n", len(report.Added), customer.Name, report.Skipped)
	return subcommands.ExitSuccess
}
