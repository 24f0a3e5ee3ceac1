package advisor

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Candidate is an asset the optimizer may buy.
type Candidate struct {
	Ticker         string  `json:"ticker"`
	Price          float64 `json:"price"`
	ExpectedReturn float64 `json:"expected_return"`
}

// LookAhead is the criterion used to compare simulated purchases.
type LookAhead int

const (
	// LookAheadSharpe picks the purchase with the best resulting Sharpe ratio.
	LookAheadSharpe LookAhead = iota
	// LookAheadUtility picks the purchase with the best resulting mean-variance utility.
	LookAheadUtility
)

func (l LookAhead) String() string {
	if l == LookAheadUtility {
		return "utility"
	}
	return "sharpe"
}

// ParseLookAhead parses "sharpe" or "utility".
func ParseLookAhead(s string) (LookAhead, error) {
	switch s {
	case "sharpe", "":
		return LookAheadSharpe, nil
	case "utility":
		return LookAheadUtility, nil
	}
	return 0, fmt.Errorf("%w: unknown look-ahead %q, want sharpe or utility", ErrInvalidInput, s)
}

// Optimizer buys whole shares of candidates to maximize the utility
//
//	U(w) = wᵀμ − λ·wᵀΣw
//
// greedily: while the cheapest candidate is affordable, it simulates buying a lot of each
// affordable candidate, and commits the lot that gives the best resulting portfolio.
// Existing holdings are never sold.
//
// Expected returns and the covariance must be on the same time scale (usually annual).
type Optimizer struct {
	Lambda      float64   // risk aversion
	RiskFree    float64   // risk-free rate of the Sharpe ratio
	LotNotional float64   // approximate value of a lot
	LookAhead   LookAhead // criterion to compare lots
}

// NewOptimizer returns an optimizer with the given risk aversion and default parameters.
func NewOptimizer(lambda float64) *Optimizer {
	return &Optimizer{Lambda: lambda, RiskFree: 0.04, LotNotional: 100}
}

// OptimizationResult is the outcome of an optimization. Slices are in candidate order.
type OptimizationResult struct {
	Tickers         []string        `json:"tickers"`
	Shares          []int64         `json:"shares"`  // final share counts
	Added           []int64         `json:"added"`   // shares bought in this run
	Weights         []float64       `json:"weights"` // final value weights, 0-1
	Utility         float64         `json:"utility"`
	Spent           decimal.Decimal `json:"spent"`
	RemainingBudget decimal.Decimal `json:"remaining_budget"`
}

// Optimize allocates budget over candidates, on top of initialShares (nil means none).
//
// The covariance must be square with one row per candidate, prices must be positive,
// and the budget and the initial shares non-negative. Without candidates or budget the
// initial state is returned.
func (o *Optimizer) Optimize(candidates []Candidate, cov [][]float64, budget float64, initialShares []int64) (OptimizationResult, error) {
	n := len(candidates)
	if err := o.validate(candidates, cov, budget, initialShares); err != nil {
		return OptimizationResult{}, err
	}

	res := OptimizationResult{
		Tickers:         make([]string, n),
		Shares:          make([]int64, n),
		Added:           make([]int64, n),
		Weights:         make([]float64, n),
		RemainingBudget: decimal.NewFromFloat(budget),
		Spent:           decimal.Zero,
	}
	prices := make([]decimal.Decimal, n)
	mu := make([]float64, n)
	for i, c := range candidates {
		res.Tickers[i] = c.Ticker
		prices[i] = decimal.NewFromFloat(c.Price)
		mu[i] = c.ExpectedReturn
	}
	copy(res.Shares, initialShares)
	if n == 0 {
		return res, nil
	}
	sigma := mat.NewDense(n, n, flatten(cov))

	cheapest := prices[0]
	for _, p := range prices[1:] {
		cheapest = decimal.Min(cheapest, p)
	}

	trial := make([]int64, n)
	for !res.RemainingBudget.LessThan(cheapest) {
		best, bestLot, bestScore := -1, int64(0), math.Inf(-1)
		for i, c := range candidates {
			if res.RemainingBudget.LessThan(prices[i]) {
				continue
			}
			lot := max(1, int64(math.Round(o.LotNotional/c.Price)))
			lot = min(lot, res.RemainingBudget.Div(prices[i]).Floor().IntPart())

			copy(trial, res.Shares)
			trial[i] += lot
			score := o.score(valueWeights(candidates, trial), mu, sigma)
			// strict comparison: the first candidate wins ties.
			if score > bestScore {
				best, bestLot, bestScore = i, lot, score
			}
		}
		if best < 0 {
			break
		}
		cost := prices[best].Mul(decimal.NewFromInt(bestLot))
		res.Shares[best] += bestLot
		res.Added[best] += bestLot
		res.RemainingBudget = res.RemainingBudget.Sub(cost)
		res.Spent = res.Spent.Add(cost)
	}

	res.Weights = valueWeights(candidates, res.Shares)
	res.Utility = o.utility(res.Weights, mu, sigma)
	return res, nil
}

func (o *Optimizer) validate(candidates []Candidate, cov [][]float64, budget float64, initialShares []int64) error {
	n := len(candidates)
	if len(cov) != n {
		return fmt.Errorf("covariance has %d rows for %d candidates: %w", len(cov), n, ErrDimension)
	}
	for i, row := range cov {
		if len(row) != n {
			return fmt.Errorf("covariance row %d has %d columns for %d candidates: %w", i, len(row), n, ErrDimension)
		}
	}
	for _, c := range candidates {
		if c.Price <= 0 || math.IsNaN(c.Price) {
			return fmt.Errorf("candidate %s: %w %v", c.Ticker, ErrNegativePrice, c.Price)
		}
	}
	if budget < 0 || math.IsNaN(budget) {
		return fmt.Errorf("%w: negative budget %v", ErrInvalidInput, budget)
	}
	if initialShares != nil && len(initialShares) != n {
		return fmt.Errorf("%d initial shares for %d candidates: %w", len(initialShares), n, ErrDimension)
	}
	for i, s := range initialShares {
		if s < 0 {
			return fmt.Errorf("%w: negative initial shares %d for %s", ErrInvalidInput, s, candidates[i].Ticker)
		}
	}
	return nil
}

// score evaluates a simulated weight vector with the look-ahead criterion.
func (o *Optimizer) score(w, mu []float64, sigma mat.Matrix) float64 {
	if o.LookAhead == LookAheadUtility {
		return o.utility(w, mu, sigma)
	}
	return o.sharpe(w, mu, sigma)
}

func (o *Optimizer) utility(w, mu []float64, sigma mat.Matrix) float64 {
	ret, variance := moments(w, mu, sigma)
	return ret - o.Lambda*variance
}

// sharpe is 0 for a riskless portfolio.
func (o *Optimizer) sharpe(w, mu []float64, sigma mat.Matrix) float64 {
	ret, variance := moments(w, mu, sigma)
	if variance <= 0 {
		return 0
	}
	return (ret - o.RiskFree) / math.Sqrt(variance)
}

// moments returns the expected return wᵀμ and variance wᵀΣw of a portfolio.
func moments(w, mu []float64, sigma mat.Matrix) (ret, variance float64) {
	v := mat.NewVecDense(len(w), w)
	return floats.Dot(w, mu), mat.Inner(v, sigma, v)
}

// valueWeights returns the value weights of shares at candidate prices.
func valueWeights(candidates []Candidate, shares []int64) []float64 {
	w := make([]float64, len(candidates))
	total := 0.0
	for i, c := range candidates {
		w[i] = float64(shares[i]) * c.Price
		total += w[i]
	}
	if total == 0 {
		return w
	}
	floats.Scale(1/total, w)
	return w
}

// flatten returns the row major content of a square matrix.
func flatten(m [][]float64) []float64 {
	flat := make([]float64, 0, len(m)*len(m))
	for _, row := range m {
		flat = append(flat, row...)
	}
	return flat
}
