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

type scoreCmd struct{}

func (*scoreCmd) Name() string     { return "score" }
func (*scoreCmd) Synopsis() string { return "score the assets of a snapshot against each other" }
func (*scoreCmd) Usage() string {
	return `adv score [<snapshot>]

  Scores every asset of the snapshot on valuation, quality and low volatility,
  relative to the other assets. See 'adv topic factors'.
`
}

func (*scoreCmd) SetFlags(f *flag.FlagSet) {}

func (*scoreCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filename := snapshotFiles(f)[0]
	s, err := advisor.LoadSnapshot(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	scores := advisor.ScoreAligned(s.Assets)
	return printResult(scores, func() string { return renderer.RenderScores(scores) })
}
