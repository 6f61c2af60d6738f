// Package cmd implements the CLI application to manage a fiado ledger.
package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fiado"
	"github.com/etnz/fiado/config"
	"github.com/etnz/fiado/date"
	"github.com/etnz/fiado/docstore"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands() {
		c.Register(cmd.Command, cmd.Group)
	}
}

// Entry is a subcommand and the group it is listed in.
type Entry struct {
	subcommands.Command
	Group string
}

// Commands lists every subcommand.
func Commands() []Entry {
	return []Entry{
		{&customersCmd{}, "customers"},
		{&customerCmd{}, "customers"},
		{&showCmd{}, "customers"},
		{&deleteCustomerCmd{}, "customers"},

		{&transactionCmd{typ: fiado.Sale}, "transactions"},
		{&transactionCmd{typ: fiado.Payment}, "transactions"},
		{&editTxCmd{}, "transactions"},
		{&deleteTxCmd{}, "transactions"},
		{&scanCmd{}, "transactions"},

		{&overdueCmd{}, "reports"},
		{&dashboardCmd{}, "reports"},

		{&exportCmd{}, "backup"},
		{&importCmd{}, "backup"},

		{&expensesCmd{}, "expenses"},
		{&expenseCmd{}, "expenses"},
		{&payExpenseCmd{}, "expenses"},
		{&deleteExpenseCmd{}, "expenses"},

		{&usersCmd{}, "users"},
		{&registerCmd{}, "users"},
		{&approveCmd{}, "users"},
		{&deleteUserCmd{}, "users"},

		{&serveCmd{}, "server"},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "", "Path to the configuration file. Defaults to fiado.yaml in the current directory, if any.")
var storeDriver = flag.String("store", "", "Store driver (dir, sqlite, postgres, redis, memory). Overrides the configuration.")
var verbose = flag.Bool("v", false, "Log debug information.")
var raw = flag.Bool("raw", false, "Print reports as raw markdown.")

// stdout receives the command results.
var stdout io.Writer = os.Stdout

// loadConfig loads the configuration, applies the global flags and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *storeDriver != "" {
		cfg.Store.Driver = *storeDriver
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	fiado.DefaultCurrency = cfg.Currency
	return cfg, nil
}

// openLedger loads the configuration and opens the ledger it describes.
// The returned function releases the store.
func openLedger(ctx context.Context) (*fiado.Ledger, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	docs, closeStore, err := docstore.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug().Str("driver", cfg.Store.Driver).Msg("store opened")
	release := func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}
	return fiado.NewLedger(docs, fiado.Policy{RejectNegative: cfg.Ledger.RejectNegative}), cfg, release, nil
}

// printMarkdown renders markdown for the terminal, unless -raw is set.
func printMarkdown(md string) {
	if *raw {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// findCustomer finds a customer by id, or by name when it is unambiguous.
func findCustomer(ctx context.Context, l *fiado.Ledger, ref string) (fiado.Customer, error) {
	c, ok, err := l.Customer(ctx, ref)
	if err != nil {
		return fiado.Customer{}, err
	}
	if ok {
		return c, nil
	}
	customers, err := l.Customers(ctx)
	if err != nil {
		return fiado.Customer{}, err
	}
	var matches []fiado.Customer
	for _, c := range customers {
		if strings.EqualFold(c.Name, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return fiado.Customer{}, fmt.Errorf("no customer %q", ref)
	case 1:
		return matches[0], nil
	default:
		return fiado.Customer{}, fmt.Errorf("%d customers are named %q, use an id", len(matches), ref)
	}
}

// parseDay parses a date flag, empty means today.
func parseDay(l *fiado.Ledger, s string) (date.Date, error) {
	if s == "" {
		return l.Today(), nil
	}
	return date.Parse(s)
}

// printJSON prints v as indented JSON.
func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
