package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/advisor"
	"github.com/etnz/advisor/renderer"
	"github.com/google/subcommands"
)

type distributeCmd struct {
	budget float64
	shares bool
}

func (*distributeCmd) Name() string { return "distribute" }
func (*distributeCmd) Synopsis() string {
	return "split a budget over the positions, favoring diversification"
}
func (*distributeCmd) Usage() string {
	return `adv distribute -budget <amount> [-shares] [<snapshot>]

  Splits the budget over the current positions, giving more to the positions
  that least overlap the most concentrated stocks. See 'adv topic concentration'.
`
}

func (c *distributeCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.budget, "budget", 0, "cash to invest")
	f.BoolVar(&c.shares, "shares", false, "round amounts down to whole shares")
}

func (c *distributeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	s, err := advisor.LoadSnapshot(snapshotFiles(f)[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.shares {
		recs, err := advisor.DistributeShares(s.Portfolio, c.budget)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error distributing budget: %v\n", err)
			return subcommands.ExitUsageError
		}
		return printResult(recs, func() string { return renderer.RenderShares(recs, cfg.Currency) })
	}
	recs, err := advisor.DistributeBudget(s.Portfolio, c.budget)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error distributing budget: %v\n", err)
		return subcommands.ExitUsageError
	}
	return printResult(recs, func() string { return renderer.RenderDistribution(recs, cfg.Currency) })
}
