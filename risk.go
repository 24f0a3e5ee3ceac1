package advisor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MinHistory is the number of aligned samples (about six months of trading days) below
// which annualized statistics are not trusted.
const MinHistory = 126

// LogReturns returns the per-period log returns ln(p[t]/p[t-1]).
// A step involving a non-positive price has a 0 return.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	r := make([]float64, len(prices)-1)
	for t := 1; t < len(prices); t++ {
		if prices[t] > 0 && prices[t-1] > 0 {
			r[t-1] = math.Log(prices[t] / prices[t-1])
		}
	}
	return r
}

// Covariance returns the population covariance matrix of the log returns of aligned
// price series, indexed like aligned. Entries are per-period, not annualized.
//
// Every series must have the same length.
func Covariance(aligned [][]float64) ([][]float64, error) {
	n := len(aligned)
	if n == 0 {
		return [][]float64{}, nil
	}
	length := len(aligned[0])
	for i, prices := range aligned {
		if len(prices) != length {
			return nil, fmt.Errorf("series %d has %d prices, want %d: %w", i, len(prices), length, ErrDimension)
		}
	}

	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	samples := length - 1
	if samples < 2 {
		// a single return has no dispersion.
		return cov, nil
	}

	returns := mat.NewDense(samples, n, nil)
	for j, prices := range aligned {
		returns.SetCol(j, LogReturns(prices))
	}
	var sym mat.SymDense
	stat.CovarianceMatrix(&sym, returns, nil)

	// gonum computes the sample covariance, rescale it to the population one.
	scale := float64(samples-1) / float64(samples)
	for i := range n {
		for j := range n {
			cov[i][j] = sym.At(i, j) * scale
		}
	}
	return cov, nil
}

// Correlation converts a covariance matrix into a correlation matrix.
// Assets with no variance have a 0 correlation with the others.
func Correlation(cov [][]float64) [][]float64 {
	n := len(cov)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		for j := range n {
			d := math.Sqrt(cov[i][i] * cov[j][j])
			switch {
			case i == j:
				corr[i][j] = 1
			case d > 0:
				corr[i][j] = cov[i][j] / d
			}
		}
	}
	return corr
}

// Annualize scales a per-period covariance matrix to an annual one.
func Annualize(cov [][]float64) [][]float64 {
	annual := make([][]float64, len(cov))
	for i, row := range cov {
		annual[i] = make([]float64, len(row))
		floats.ScaleTo(annual[i], TradingDays, row)
	}
	return annual
}

// AnnualizedVolatility returns the sample standard deviation of daily log returns
// scaled by √252. It is 0 for fewer than three prices.
func AnnualizedVolatility(prices []float64) float64 {
	r := LogReturns(prices)
	if len(r) < 2 {
		return 0
	}
	return stat.StdDev(r, nil) * math.Sqrt(TradingDays)
}

// Stats are the annualized statistics of a portfolio over its history.
type Stats struct {
	Return     float64 `json:"return"`     // exp(mean·252) − 1
	Volatility float64 `json:"volatility"` // √(variance·252)
	Samples    int     `json:"samples"`    // number of aligned prices
}

// HistoricalStats returns the annualized return and volatility of a portfolio with
// constant weights over aligned price series.
//
// Below MinHistory samples, the return and volatility are reported as 0.
func HistoricalStats(aligned [][]float64, weights []float64) (Stats, error) {
	if len(aligned) != len(weights) {
		return Stats{}, fmt.Errorf("%d series for %d weights: %w", len(aligned), len(weights), ErrDimension)
	}
	if len(aligned) == 0 {
		return Stats{}, nil
	}
	s := Stats{Samples: len(aligned[0])}
	for i, prices := range aligned {
		if len(prices) != s.Samples {
			return Stats{}, fmt.Errorf("series %d has %d prices, want %d: %w", i, len(prices), s.Samples, ErrDimension)
		}
	}
	if s.Samples < MinHistory {
		return s, nil
	}

	portfolio := make([]float64, s.Samples-1)
	for i, prices := range aligned {
		floats.AddScaled(portfolio, weights[i], LogReturns(prices))
	}
	mean, std := stat.PopMeanStdDev(portfolio, nil)
	s.Return = math.Exp(mean*TradingDays) - 1
	s.Volatility = std * math.Sqrt(TradingDays)
	return s, nil
}

// RiskLevel is a coarse classification of an annualized volatility.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// ClassifyRisk classifies an annualized volatility (0.2 is 20%).
func ClassifyRisk(annualVol float64) RiskLevel {
	switch {
	case annualVol < 0.15:
		return RiskLow
	case annualVol < 0.25:
		return RiskMedium
	case annualVol < 0.35:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}
