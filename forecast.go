package advisor

// Forecaster maps a composite factor score to an expected annual return.
//
// A score of z standard deviations above the peer average is expected to earn z times
// the benchmark volatility above the risk-free rate.
type Forecaster struct {
	RiskFree     float64 // annual risk-free rate
	BenchmarkVol float64 // annual volatility of the benchmark
}

// DefaultForecaster uses a 4% risk-free rate and a 15% benchmark volatility.
var DefaultForecaster = Forecaster{RiskFree: 0.04, BenchmarkVol: 0.15}

// ForecastReturn returns the expected annual return for a composite score z.
func (f Forecaster) ForecastReturn(z float64) float64 {
	return f.RiskFree + z*f.BenchmarkVol
}

// ForecastReturns returns the expected annual return of each score, in order.
func (f Forecaster) ForecastReturns(scores []FactorScore) []float64 {
	mu := make([]float64, len(scores))
	for i, s := range scores {
		mu[i] = f.ForecastReturn(s.Composite)
	}
	return mu
}

// ForecastReturn returns the expected annual return for z with the default parameters.
func ForecastReturn(z float64) float64 { return DefaultForecaster.ForecastReturn(z) }
