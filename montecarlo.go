package advisor

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projector simulates correlated log-normal asset paths to project a portfolio value.
//
// Zero fields take their default value.
type Projector struct {
	Paths          int     // number of simulated paths, 1000 by default
	StepsPerYear   int     // simulation steps per year, 12 by default
	PeriodsPerYear int     // periods per year of the covariance, 252 by default
	Seed           *uint64 // nil draws fresh randomness
}

// ConePoint summarizes the simulated portfolio values at a step.
type ConePoint struct {
	Step   int     `json:"step"`
	Time   float64 `json:"time"` // in years
	P05    float64 `json:"p05"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
}

// ProjectionCone is the percentile cone of a projection, one point per step starting
// with the initial value.
type ProjectionCone struct {
	Points   []ConePoint `json:"points"`
	Paths    int         `json:"paths"`
	Seed     uint64      `json:"seed"` // seed that reproduces the projection
	Warnings []Warning   `json:"warnings,omitempty"`
}

// Final returns the last point of the cone.
func (c ProjectionCone) Final() ConePoint {
	if len(c.Points) == 0 {
		return ConePoint{}
	}
	return c.Points[len(c.Points)-1]
}

// Project simulates a buy-and-hold portfolio over horizonYears.
//
// weights are the portfolio weights (0-1), expectedReturns the annual expected returns,
// cov the per-period covariance of log returns. At each step the covariance is scaled
// to the step, shocks are correlated with its Cholesky factor and each asset's log
// return is the shock plus its drift μ − σ²/2.
func (p Projector) Project(weights, expectedReturns []float64, cov [][]float64, horizonYears, initialValue float64) (ProjectionCone, error) {
	n := len(weights)
	if len(expectedReturns) != n || len(cov) != n {
		return ProjectionCone{}, fmt.Errorf("%d weights, %d returns and %d covariance rows: %w", n, len(expectedReturns), len(cov), ErrDimension)
	}
	for i, row := range cov {
		if len(row) != n {
			return ProjectionCone{}, fmt.Errorf("covariance row %d has %d columns, want %d: %w", i, len(row), n, ErrDimension)
		}
	}
	if horizonYears < 0 || math.IsNaN(horizonYears) {
		return ProjectionCone{}, fmt.Errorf("%w: negative horizon %v", ErrInvalidInput, horizonYears)
	}
	if initialValue < 0 || math.IsNaN(initialValue) {
		return ProjectionCone{}, fmt.Errorf("%w: negative initial value %v", ErrInvalidInput, initialValue)
	}
	p = p.withDefaults()

	cone := ProjectionCone{Paths: p.Paths}
	if p.Seed != nil {
		cone.Seed = *p.Seed
	} else {
		cone.Seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(cone.Seed, cone.Seed^0x9e3779b97f4a7c15))

	steps := int(math.Round(horizonYears * float64(p.StepsPerYear)))
	scale := float64(p.PeriodsPerYear) / float64(p.StepsPerYear)

	drift := make([]float64, n)
	var chol *mat.TriDense
	if n > 0 {
		stepCov := mat.NewSymDense(n, nil)
		for i := range n {
			for j := i; j < n; j++ {
				stepCov.SetSym(i, j, (cov[i][j]+cov[j][i])/2*scale)
			}
			drift[i] = expectedReturns[i]/float64(p.StepsPerYear) - stepCov.At(i, i)/2
		}
		var ridged, ok bool
		chol, ridged, ok = cholesky(stepCov)
		if !ok {
			return ProjectionCone{}, fmt.Errorf("%w: covariance is not positive semi-definite", ErrInvalidInput)
		}
		if ridged {
			cone.Warnings = append(cone.Warnings, warnf(WarnNotPositiveDefinite, "", "covariance is singular, factorized with a diagonal ridge"))
		}
	}

	// values[s][k] is the value of path k at step s.
	values := make([][]float64, steps+1)
	for s := range values {
		values[s] = make([]float64, p.Paths)
	}
	growth := make([]float64, n)
	z := mat.NewVecDense(max(n, 1), nil)
	var shock mat.VecDense
	for k := range p.Paths {
		for i := range growth {
			growth[i] = 1
		}
		values[0][k] = initialValue
		for s := 1; s <= steps; s++ {
			if n == 0 {
				values[s][k] = initialValue
				continue
			}
			for i := range n {
				z.SetVec(i, rng.NormFloat64())
			}
			shock.MulVec(chol, z)
			v := 0.0
			for i := range n {
				growth[i] *= math.Exp(drift[i] + shock.AtVec(i))
				v += weights[i] * growth[i]
			}
			values[s][k] = initialValue * v
		}
	}

	cone.Points = make([]ConePoint, steps+1)
	for s, vs := range values {
		slices.Sort(vs)
		cone.Points[s] = ConePoint{
			Step:   s,
			Time:   float64(s) / float64(p.StepsPerYear),
			P05:    stat.Quantile(0.05, stat.Empirical, vs, nil),
			Median: stat.Quantile(0.5, stat.Empirical, vs, nil),
			P95:    stat.Quantile(0.95, stat.Empirical, vs, nil),
		}
	}
	return cone, nil
}

func (p Projector) withDefaults() Projector {
	if p.Paths <= 0 {
		p.Paths = 1000
	}
	if p.StepsPerYear <= 0 {
		p.StepsPerYear = 12
	}
	if p.PeriodsPerYear <= 0 {
		p.PeriodsPerYear = TradingDays
	}
	return p
}

// cholesky returns the lower triangular factor L of a = LLᵀ.
// A semi-definite matrix is factorized once more with a tiny ridge on its diagonal.
func cholesky(a *mat.SymDense) (l *mat.TriDense, ridged, ok bool) {
	var chol mat.Cholesky
	if !chol.Factorize(a) {
		ridged = true
		n := a.SymmetricDim()
		scale := 1.0
		for i := range n {
			scale = max(scale, a.At(i, i))
		}
		ridge := mat.NewSymDense(n, nil)
		ridge.CopySym(a)
		for i := range n {
			ridge.SetSym(i, i, a.At(i, i)+1e-10*scale)
		}
		if !chol.Factorize(ridge) {
			return nil, true, false
		}
	}
	l = new(mat.TriDense)
	chol.LTo(l)
	return l, ridged, true
}
