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

type overlapCmd struct{}

func (*overlapCmd) Name() string     { return "overlap" }
func (*overlapCmd) Synopsis() string { return "show the look-through concentration of the portfolio" }
func (*overlapCmd) Usage() string {
	return `adv overlap [<snapshot>]

  Looks through the funds of the portfolio and shows the largest single stock
  exposures. See 'adv topic concentration'.
`
}

func (*overlapCmd) SetFlags(f *flag.FlagSet) {}

func (*overlapCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filename := snapshotFiles(f)[0]
	s, err := advisor.LoadSnapshot(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(s.Portfolio) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: %s holds no position.\n", filename)
	}
	report := advisor.AnalyzeOverlap(s.Portfolio)
	printWarnings(report.Warnings)
	return printResult(report, func() string { return renderer.RenderOverlap(report) })
}
