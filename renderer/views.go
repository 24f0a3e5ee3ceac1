package renderer

import (
	"github.com/etnz/advisor"
	"github.com/shopspring/decimal"
)

// Optimization is the view of an optimization result.
type Optimization struct {
	Rows      []OptimizationRow
	Utility   float64
	Spent     decimal.Decimal
	Remaining decimal.Decimal
}

// OptimizationRow is a candidate of an optimization.
type OptimizationRow struct {
	Ticker string
	Shares int64
	Added  int64
	Weight float64
}

func newOptimization(res advisor.OptimizationResult) Optimization {
	o := Optimization{Utility: res.Utility, Spent: res.Spent, Remaining: res.RemainingBudget}
	for i, t := range res.Tickers {
		o.Rows = append(o.Rows, OptimizationRow{Ticker: t, Shares: res.Shares[i], Added: res.Added[i], Weight: res.Weights[i]})
	}
	return o
}

// Projection is the view of a projection cone, sampled yearly.
type Projection struct {
	Paths  int
	Seed   uint64
	Points []advisor.ConePoint
}

func newProjection(cone advisor.ProjectionCone) Projection {
	p := Projection{Paths: cone.Paths, Seed: cone.Seed}
	for _, pt := range cone.Points {
		// whole years only, and the last point.
		if pt.Time == float64(int(pt.Time)) || pt.Step == cone.Final().Step {
			p.Points = append(p.Points, pt)
		}
	}
	return p
}

// Recommendation is the view of a full recommendation.
type Recommendation struct {
	*advisor.Recommendation
	OptimizationView Optimization
	ProjectionView   Projection
}

func newRecommendation(rec *advisor.Recommendation) Recommendation {
	return Recommendation{
		Recommendation:   rec,
		OptimizationView: newOptimization(rec.Optimization),
		ProjectionView:   newProjection(rec.Projection),
	}
}
