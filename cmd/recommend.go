package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/advisor"
	"github.com/etnz/advisor/config"
	"github.com/etnz/advisor/renderer"
	"github.com/google/subcommands"
)

// run runs the pipeline on every snapshot argument, with the configuration and the
// pipeline flags.
func run(ctx context.Context, p *pipelineFlags, f *flag.FlagSet) (*config.Config, []*advisor.Recommendation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load configuration: %w", err)
	}
	opts, err := p.options(cfg, f)
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg)
	profiles := p.newProfiles(cfg, log)

	var reqs []advisor.Request
	for _, filename := range snapshotFiles(f) {
		req, err := p.request(ctx, filename, profiles)
		if err != nil {
			return nil, nil, err
		}
		reqs = append(reqs, req)
	}

	recs, err := advisor.New(opts, log).RecommendAll(ctx, reqs, cfg.Concurrency)
	if err != nil {
		return nil, nil, err
	}
	return cfg, recs, nil
}

type recommendCmd struct {
	pipelineFlags
}

func (*recommendCmd) Name() string { return "recommend" }
func (*recommendCmd) Synopsis() string {
	return "score, optimize and project the portfolio of each snapshot"
}
func (*recommendCmd) Usage() string {
	return `adv recommend -budget <amount> [<snapshot>...]

  Runs the full recommendation on each snapshot: factor scores, expected returns,
  optimized purchases, concentration, budget distribution and projection.
  Snapshots are processed concurrently, see 'concurrency' in 'adv topic config'.

Usage Examples:
# Invest 10000 in the candidates of snapshot.jsonl
$ adv recommend -budget 10000

# Buy only from AAPL and MSFT, read from a shared market snapshot
$ adv recommend -budget 10000 -profiles market.jsonl -candidates AAPL,MSFT alice.jsonl bob.jsonl
`
}

func (c *recommendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, recs, err := run(ctx, &c.pipelineFlags, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running recommendation: %v\n", err)
		return subcommands.ExitFailure
	}
	return printResult(recs, func() string {
		var b strings.Builder
		for _, rec := range recs {
			b.WriteString(renderer.RenderRecommendation(rec, cfg.Currency))
			b.WriteString("\n")
		}
		return b.String()
	})
}

type optimizeCmd struct {
	pipelineFlags
}

func (*optimizeCmd) Name() string     { return "optimize" }
func (*optimizeCmd) Synopsis() string { return "spend a budget on whole shares of the candidates" }
func (*optimizeCmd) Usage() string {
	return `adv optimize -budget <amount> [-lambda <risk aversion>] [-look-ahead sharpe|utility] [<snapshot>]

  Buys whole shares of the snapshot assets, one lot at a time, picking the lot that
  improves the portfolio the most. See 'adv topic optimizer'.
`
}

func (c *optimizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: optimize takes a single snapshot, use recommend for several.\n")
		return subcommands.ExitUsageError
	}
	cfg, recs, err := run(ctx, &c.pipelineFlags, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error optimizing: %v\n", err)
		return subcommands.ExitFailure
	}
	rec := recs[0]
	printWarnings(rec.Warnings)
	return printResult(rec.Optimization, func() string {
		return renderer.RenderOptimization(rec.Optimization, cfg.Currency)
	})
}

type projectCmd struct {
	pipelineFlags
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "project the portfolio value with a Monte Carlo simulation" }
func (*projectCmd) Usage() string {
	return `adv project [-years <horizon>] [-paths <n>] [-seed <seed>] [-budget <amount>] [<snapshot>]

  Projects the portfolio value, after investing the budget if any, and shows the
  5th percentile, median and 95th percentile per year. See 'adv topic projection'.
`
}

func (c *projectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: project takes a single snapshot, use recommend for several.\n")
		return subcommands.ExitUsageError
	}
	cfg, recs, err := run(ctx, &c.pipelineFlags, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error projecting: %v\n", err)
		return subcommands.ExitFailure
	}
	rec := recs[0]
	printWarnings(rec.Warnings)
	return printResult(rec.Projection, func() string {
		return renderer.RenderProjection(rec.Projection, cfg.Currency)
	})
}
