package advisor

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options are the parameters of a recommendation pipeline.
type Options struct {
	Forecaster   Forecaster
	Lambda       float64   // risk aversion of the optimizer
	LotNotional  float64   // approximate value of a purchase lot
	LookAhead    LookAhead // optimizer criterion
	MinHistory   int       // minimum prices for an asset to enter the risk model
	Projector    Projector
	HorizonYears float64 // projection horizon
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Forecaster:   DefaultForecaster,
		Lambda:       1,
		LotNotional:  100,
		LookAhead:    LookAheadSharpe,
		MinHistory:   MinHistory,
		Projector:    Projector{Paths: 1000, StepsPerYear: 12, PeriodsPerYear: TradingDays},
		HorizonYears: 10,
	}
}

// Advisor chains the components into a full recommendation.
type Advisor struct {
	opts Options
	log  zerolog.Logger
}

// New returns an Advisor.
func New(opts Options, log zerolog.Logger) *Advisor {
	return &Advisor{opts: opts, log: log.With().Str("component", "advisor").Logger()}
}

// Request is the input of a recommendation.
type Request struct {
	Name       string    // label of the request, for reports
	Candidates []*Asset  // peer set to score and buy from
	Portfolio  Portfolio // current holdings
	Budget     float64   // cash to invest
}

// Recommendation is the result of the pipeline for a Request.
//
// Tickers lists the candidates with enough history to enter the risk model. The
// expected returns, covariance, optimization and projection are indexed like Tickers.
type Recommendation struct {
	RunID           uuid.UUID              `json:"run_id"`
	Name            string                 `json:"name"`
	Scores          []FactorScore          `json:"scores"` // every candidate
	Tickers         []string               `json:"tickers"`
	ExpectedReturns []float64              `json:"expected_returns"`
	Covariance      [][]float64            `json:"covariance"` // per-period
	Optimization    OptimizationResult     `json:"optimization"`
	Stats           Stats                  `json:"stats"` // of the optimized portfolio
	Risk            RiskLevel              `json:"risk"`
	Overlap         OverlapReport          `json:"overlap"` // of the optimized portfolio
	Distribution    []BudgetRecommendation `json:"distribution,omitempty"`
	Projection      ProjectionCone         `json:"projection"`
	Warnings        []Warning              `json:"warnings,omitempty"`
}

// Recommend runs the full pipeline: scoring, forecasting, risk model, optimization,
// concentration analysis and projection of the optimized portfolio.
func (a *Advisor) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	rec := &Recommendation{RunID: uuid.New(), Name: req.Name}
	log := a.log.With().Str("run", rec.RunID.String()).Str("name", req.Name).Logger()

	for _, c := range req.Candidates {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid candidate: %w", err)
		}
	}
	if err := req.Portfolio.Validate(); err != nil {
		return nil, fmt.Errorf("invalid portfolio: %w", err)
	}

	// Assets with a short history are scored, but kept out of the risk model.
	var eligible []*Asset
	for _, c := range req.Candidates {
		if c.Prices.Len() < a.opts.MinHistory {
			rec.Warnings = append(rec.Warnings, warnf(WarnShortHistory, c.Ticker, "%d prices, %d required for the risk model", c.Prices.Len(), a.opts.MinHistory))
			continue
		}
		eligible = append(eligible, c)
	}
	log.Debug().Int("candidates", len(req.Candidates)).Int("eligible", len(eligible)).Msg("aligning histories")
	_, aligned := alignAssets(eligible)

	inputs := make([]FactorInput, len(req.Candidates))
	for i, c := range req.Candidates {
		inputs[i] = FactorInput{Asset: c}
		if j := slices.Index(eligible, c); j >= 0 {
			inputs[i].Prices = aligned[j]
		}
	}
	rec.Scores = ScoreAssets(inputs)
	rec.Warnings = append(rec.Warnings, factorWarnings(rec.Scores)...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(eligible))
	initial := make([]int64, len(eligible))
	rec.Tickers = make([]string, len(eligible))
	for j, c := range eligible {
		i := slices.Index(req.Candidates, c)
		mu := a.opts.Forecaster.ForecastReturn(rec.Scores[i].Composite)
		candidates[j] = Candidate{Ticker: c.Ticker, Price: c.Price, ExpectedReturn: mu}
		rec.Tickers[j] = c.Ticker
		rec.ExpectedReturns = append(rec.ExpectedReturns, mu)
		for _, it := range req.Portfolio {
			if it.Asset.Ticker == c.Ticker {
				initial[j] += it.Shares
			}
		}
	}

	cov, err := Covariance(aligned)
	if err != nil {
		return nil, fmt.Errorf("cannot compute covariance: %w", err)
	}
	rec.Covariance = cov

	opt := &Optimizer{
		Lambda:      a.opts.Lambda,
		RiskFree:    a.opts.Forecaster.RiskFree,
		LotNotional: a.opts.LotNotional,
		LookAhead:   a.opts.LookAhead,
	}
	rec.Optimization, err = opt.Optimize(candidates, Annualize(cov), req.Budget, initial)
	if err != nil {
		return nil, fmt.Errorf("cannot optimize: %w", err)
	}
	log.Debug().
		Str("spent", rec.Optimization.Spent.StringFixed(2)).
		Float64("utility", rec.Optimization.Utility).
		Msg("optimized")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if rec.Stats, err = HistoricalStats(aligned, rec.Optimization.Weights); err != nil {
		return nil, fmt.Errorf("cannot compute statistics: %w", err)
	}
	if len(eligible) > 0 && rec.Stats.Samples < a.opts.MinHistory {
		rec.Warnings = append(rec.Warnings, warnf(WarnStatsUnavailable, "", "aligned history has %d samples, %d required", rec.Stats.Samples, a.opts.MinHistory))
	}
	rec.Risk = ClassifyRisk(rec.Stats.Volatility)

	optimized := a.optimizedPortfolio(req.Portfolio, eligible, rec.Optimization.Added)
	rec.Overlap = AnalyzeOverlap(optimized)
	rec.Warnings = append(rec.Warnings, rec.Overlap.Warnings...)
	if len(req.Portfolio) > 0 {
		if rec.Distribution, err = DistributeBudget(req.Portfolio, req.Budget); err != nil {
			return nil, fmt.Errorf("cannot distribute budget: %w", err)
		}
	}

	if len(eligible) > 0 {
		value := 0.0
		for j, c := range eligible {
			value += float64(rec.Optimization.Shares[j]) * c.Price
		}
		rec.Projection, err = a.opts.Projector.Project(rec.Optimization.Weights, rec.ExpectedReturns, cov, a.opts.HorizonYears, value)
		if err != nil {
			return nil, fmt.Errorf("cannot project: %w", err)
		}
		rec.Warnings = append(rec.Warnings, rec.Projection.Warnings...)
	}

	for _, w := range rec.Warnings {
		log.Warn().Str("code", string(w.Code)).Str("ticker", w.Ticker).Msg(w.Message)
	}
	log.Info().
		Int("warnings", len(rec.Warnings)).
		Float64("median", rec.Projection.Final().Median).
		Msg("recommendation ready")
	return rec, nil
}

// optimizedPortfolio returns the portfolio after buying added shares of eligible assets.
func (a *Advisor) optimizedPortfolio(p Portfolio, eligible []*Asset, added []int64) Portfolio {
	optimized := slices.Clone(p)
	for j, c := range eligible {
		if added[j] == 0 {
			continue
		}
		i := slices.IndexFunc(optimized, func(it Item) bool { return it.Asset.Ticker == c.Ticker })
		if i < 0 {
			optimized = append(optimized, Item{Asset: c})
			i = len(optimized) - 1
		}
		optimized[i].Shares += added[j]
	}
	return optimized
}

// factorWarnings reports imputed factors. A factor imputed for the whole peer set is
// reported once.
func factorWarnings(scores []FactorScore) []Warning {
	type factor struct {
		name    string
		code    WarningCode
		imputed func(FactorScore) bool
	}
	factors := []factor{
		{"valuation", WarnImputedValuation, func(s FactorScore) bool { return s.Imputed.Valuation }},
		{"quality", WarnImputedQuality, func(s FactorScore) bool { return s.Imputed.Quality }},
		{"low volatility", WarnImputedLowVol, func(s FactorScore) bool { return s.Imputed.LowVolatility }},
	}

	var warnings []Warning
	for _, f := range factors {
		var tickers []string
		for _, s := range scores {
			if f.imputed(s) {
				tickers = append(tickers, s.Ticker)
			}
		}
		switch {
		case len(tickers) == 0:
		case len(tickers) == len(scores):
			warnings = append(warnings, warnf(WarnNoFactorData, "", "no %s data in the peer set, factor ignored", f.name))
		default:
			for _, t := range tickers {
				warnings = append(warnings, warnf(f.code, t, "missing %s imputed from peers", f.name))
			}
		}
	}
	return warnings
}
