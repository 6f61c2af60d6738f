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

type usersCmd struct{}

func (*usersCmd) Name() string     { return "users" }
func (*usersCmd) Synopsis() string { return "list users" }
func (*usersCmd) Usage() string {
	return `fiado users

  Lists the users of the ledger and whether they are approved.
`
}
func (*usersCmd) SetFlags(f *flag.FlagSet) {}

func (*usersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	users, err := l.Users(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing users: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderUsers(renderer.NewUserList(users)))
	return subcommands.ExitSuccess
}

type registerCmd struct {
	name     string
	username string
	password string
	email    string
	whatsapp string
	admin    bool
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "register a user" }
func (*registerCmd) Usage() string {
	return `fiado register -name <name> -username <username> [-password <password>] [-email <email>] [-whatsapp <phone>] [-admin]

  Registers a user. Regular users wait for an admin approval.
  With -admin, the user is created, or refreshed, as an approved admin.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Full name.")
	f.StringVar(&c.username, "username", "", "Login name, unique.")
	f.StringVar(&c.password, "password", "", "Password.")
	f.StringVar(&c.email, "email", "", "Email address.")
	f.StringVar(&c.whatsapp, "whatsapp", "", "Whatsapp number.")
	f.BoolVar(&c.admin, "admin", false, "Create or refresh an admin user.")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	u := fiado.User{Name: c.name, Username: c.username, Password: c.password, Email: c.email, Whatsapp: c.whatsapp}
	if c.admin {
		err = l.EnsureAdmin(ctx, u)
	} else {
		err = l.RegisterUser(ctx, &u)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error registering user: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.admin {
		fmt.Fprintf(stdout, "Admin %s is ready\n", c.username)
	} else {
		fmt.Fprintf(stdout, "Registered user %s (%s), waiting for approval\n", u.Username, u.ID)
	}
	return subcommands.ExitSuccess
}

type approveCmd struct{}

func (*approveCmd) Name() string     { return "approve" }
func (*approveCmd) Synopsis() string { return "approve a registered user" }
func (*approveCmd) Usage() string {
	return `fiado approve <user id>
`
}
func (*approveCmd) SetFlags(f *flag.FlagSet) {}

func (*approveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: approve expects exactly one user id")
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	ok, err := l.ApproveUser(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error approving user: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no user with id %q\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Approved user %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

type deleteUserCmd struct {
	as string
}

func (*deleteUserCmd) Name() string     { return "delete-user" }
func (*deleteUserCmd) Synopsis() string { return "delete a user" }
func (*deleteUserCmd) Usage() string {
	return `fiado delete-user -as <your user id> <user id>

  Deletes a user. Users cannot delete themselves.
`
}

func (c *deleteUserCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.as, "as", "", "Id of the user performing the deletion.")
}

func (c *deleteUserCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.as == "" {
		fmt.Fprintln(os.Stderr, "Error: delete-user expects -as and exactly one user id")
		return subcommands.ExitUsageError
	}
	l, _, release, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	ok, err := l.DeleteUser(ctx, f.Arg(0), c.as)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting user: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no user with id %q\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted user %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
