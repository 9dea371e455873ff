package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/app"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/config"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/database"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/logger"
	"github.com/google/subcommands"
)

var commands = []subcommands.Command{
	&refreshCmd{},
	&pricesCmd{},
	&summaryCmd{},
	&recordCmd{},
}

// open loads config and builds the service graph. The returned func closes
// the database.
func open(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Pretty: true}, os.Stderr)

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, db, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return a, func() { db.Close() }, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

type refreshCmd struct {
	force bool
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch prices from all sources and store a snapshot" }
func (*refreshCmd) Usage() string {
	return `portfolioctl refresh [-force]

  Runs one refresh. Without -force the cooldown since the last stored
  snapshot applies.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "ignore the refresh cooldown")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, closeDB, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeDB()

	res := a.Prices.Refresh(ctx, c.force)
	writeRefresh(os.Stdout, res)
	return subcommands.ExitSuccess
}

type pricesCmd struct{}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "print the latest stored snapshot" }
func (*pricesCmd) Usage() string {
	return `portfolioctl prices

  Prints the latest snapshot, or the default prices when none is stored.
`
}

func (*pricesCmd) SetFlags(f *flag.FlagSet) {}

func (*pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, closeDB, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeDB()

	writeSnapshot(os.Stdout, a.Prices.Current())
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	user string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "value a user's portfolio at current prices" }
func (*summaryCmd) Usage() string {
	return `portfolioctl summary -user <id>
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "user id")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	a, closeDB, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeDB()

	summary, err := a.Transactions.Summary(ctx, c.user)
	if err != nil {
		return fail(err)
	}
	writeSummary(os.Stdout, summary)
	return subcommands.ExitSuccess
}

type recordCmd struct{}

func (*recordCmd) Name() string     { return "record-history" }
func (*recordCmd) Synopsis() string { return "store today's portfolio value for every user" }
func (*recordCmd) Usage() string {
	return `portfolioctl record-history
`
}

func (*recordCmd) SetFlags(f *flag.FlagSet) {}

func (*recordCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, closeDB, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeDB()

	if err := a.History.RecordAll(ctx); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
