package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/advisor"
	"github.com/google/subcommands"
)

type importCmd struct {
	output string
	shares int64
	url    string
}

func (*importCmd) Name() string { return "import" }
func (*importCmd) Synopsis() string {
	return "convert a market data provider payload into a snapshot line"
}
func (*importCmd) Usage() string {
	return `adv import [-o <snapshot>] [-shares <n>] [-url <address> | <payload.json>]

  Reads a provider JSON payload (stdin by default, or downloaded from -url with a
  cache of the day), extracts the asset fields with
  the JSONPath expressions of the 'provider' configuration, and appends the asset
  to the snapshot (stdout by default). See 'adv topic snapshot'.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "snapshot file to append to, stdout by default")
	f.Int64Var(&c.shares, "shares", -1, "number of shares held, the asset is a candidate only when not set")
	f.StringVar(&c.url, "url", "", "address of the provider payload")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	var a *advisor.Asset
	if c.url != "" {
		a, err = advisor.Fetch(ctx, advisor.DailyClient(""), c.url, cfg.Provider)
	} else {
		var in io.Reader = os.Stdin
		if f.NArg() > 0 {
			file, err := os.Open(f.Arg(0))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error opening payload: %v\n", err)
				return subcommands.ExitFailure
			}
			defer file.Close()
			in = file
		}
		a, err = advisor.Import(in, cfg.Provider)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing payload: %v\n", err)
		return subcommands.ExitFailure
	}
	s := &advisor.Snapshot{Assets: []*advisor.Asset{a}}
	if c.shares >= 0 {
		s.Portfolio = advisor.Portfolio{{Asset: a, Shares: c.shares}}
	}

	var out io.Writer = os.Stdout
	if c.output != "" {
		// the snapshot must not already define the ticker.
		if existing, err := advisor.LoadSnapshot(c.output); err == nil && existing.Asset(a.Ticker) != nil {
			fmt.Fprintf(os.Stderr, "Error: %s is already in %s\n", a.Ticker, c.output)
			return subcommands.ExitFailure
		}
		file, err := os.OpenFile(c.output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening snapshot file %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		out = file
	}
	if err := advisor.EncodeSnapshot(out, s); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output != "" {
		fmt.Fprintf(os.Stderr, "Successfully appended %s to %s\n", a.Ticker, c.output)
	}
	return subcommands.ExitSuccess
}
