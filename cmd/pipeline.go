package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/advisor"
	"github.com/etnz/advisor/cache"
	"github.com/etnz/advisor/config"
	"github.com/rs/zerolog"
)

// pipelineFlags are the flags shared by the commands running the recommendation
// pipeline. A flag that is not set keeps the configuration value.
type pipelineFlags struct {
	budget     float64
	lambda     float64
	lot        float64
	lookAhead  string
	years      float64
	paths      int
	seed       uint64
	profiles   string
	candidates string

	set map[string]bool
}

func (p *pipelineFlags) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&p.budget, "budget", 0, "cash to invest")
	f.Float64Var(&p.lambda, "lambda", 1, "risk aversion of the optimizer")
	f.Float64Var(&p.lot, "lot", 100, "approximate value of a purchase lot")
	f.StringVar(&p.lookAhead, "look-ahead", "sharpe", "optimizer criterion: sharpe or utility")
	f.Float64Var(&p.years, "years", 10, "projection horizon in years")
	f.IntVar(&p.paths, "paths", 1000, "number of simulated paths")
	f.Uint64Var(&p.seed, "seed", 0, "seed of the projection, random when not set")
	f.StringVar(&p.profiles, "profiles", "", "snapshot file holding candidate profiles, used with -candidates")
	f.StringVar(&p.candidates, "candidates", "", "comma separated tickers to buy from, instead of every snapshot asset")
}

// options returns the pipeline options of cfg, overridden by the flags set on f.
func (p *pipelineFlags) options(cfg *config.Config, f *flag.FlagSet) (advisor.Options, error) {
	p.set = make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { p.set[fl.Name] = true })

	opts := cfg.Options()
	if p.set["lambda"] {
		if p.lambda < 0 {
			return opts, fmt.Errorf("negative lambda %v", p.lambda)
		}
		opts.Lambda = p.lambda
	}
	if p.set["lot"] {
		opts.LotNotional = p.lot
	}
	if p.set["look-ahead"] {
		look, err := advisor.ParseLookAhead(p.lookAhead)
		if err != nil {
			return opts, err
		}
		opts.LookAhead = look
	}
	if p.set["years"] {
		opts.HorizonYears = p.years
	}
	if p.set["paths"] {
		opts.Projector.Paths = p.paths
	}
	if p.set["seed"] {
		seed := p.seed
		opts.Projector.Seed = &seed
	}
	return opts, nil
}

// tickers returns the -candidates tickers.
func (p *pipelineFlags) tickers() []string {
	var tickers []string
	for _, t := range strings.Split(p.candidates, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}

// newProfiles returns the profile cache of the -profiles snapshot, or nil.
func (p *pipelineFlags) newProfiles(cfg *config.Config, log zerolog.Logger) *cache.Profiles {
	if p.profiles == "" {
		return nil
	}
	return cache.New(cfg.Cache.Size, cfg.Cache.TTL, cache.FromSnapshot(p.profiles), log)
}

// request reads the request of a snapshot file. With -candidates, candidates are the
// profiles of those tickers, read through profiles when set, or from the snapshot itself.
func (p *pipelineFlags) request(ctx context.Context, filename string, profiles *cache.Profiles) (advisor.Request, error) {
	s, err := advisor.LoadSnapshot(filename)
	if err != nil {
		return advisor.Request{}, err
	}
	req := advisor.Request{
		Name:       requestName(filename),
		Candidates: s.Assets,
		Portfolio:  s.Portfolio,
		Budget:     p.budget,
	}
	tickers := p.tickers()
	if len(tickers) == 0 {
		return req, nil
	}
	if profiles != nil {
		if req.Candidates, err = profiles.GetAll(ctx, tickers...); err != nil {
			return advisor.Request{}, err
		}
		return req, nil
	}
	req.Candidates = req.Candidates[:0:0]
	for _, t := range tickers {
		a := s.Asset(t)
		if a == nil {
			return advisor.Request{}, fmt.Errorf("%w: unknown ticker %q in %s", advisor.ErrInvalidInput, t, filename)
		}
		req.Candidates = append(req.Candidates, a)
	}
	return req, nil
}
