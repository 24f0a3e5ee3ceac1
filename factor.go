package advisor

import (
	"math"
	"slices"

	"github.com/etnz/advisor/date"
	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDays is the number of trading periods in a year.
	TradingDays = 252
	// minVolatilitySamples is the minimum number of prices to measure volatility.
	minVolatilitySamples = 10
	// defaultBeta is assumed for assets with unknown risk, a deliberately low score.
	defaultBeta = 2.0
	// growthYears is the window of the dividend growth rate.
	growthYears = 5
)

// FactorInput is an asset to be scored.
type FactorInput struct {
	Asset *Asset
	// Prices is the aligned price series used to measure volatility.
	// When nil, the asset's own history is used.
	Prices []float64
}

// Factors holds the three raw factor values of an asset.
type Factors struct {
	Valuation     float64 `json:"valuation"`
	Quality       float64 `json:"quality"`
	LowVolatility float64 `json:"low_volatility"`
}

// FactorScore is the peer-relative score of an asset.
type FactorScore struct {
	Ticker        string  `json:"ticker"`
	Valuation     float64 `json:"valuation"` // Z-score
	Quality       float64 `json:"quality"`   // Z-score
	LowVolatility float64 `json:"low_volatility"`
	Composite     float64 `json:"composite"` // mean of the three Z-scores

	// Raw values actually scored, after imputation.
	Raw Factors `json:"raw"`
	// Imputed tells which raw values were substituted. A factor imputed for every
	// peer had no data at all and was scored 0.
	Imputed struct {
		Valuation     bool `json:"valuation,omitempty"`
		Quality       bool `json:"quality,omitempty"`
		LowVolatility bool `json:"low_volatility,omitempty"`
	} `json:"imputed"`
}

// ScoreAssets scores every asset relatively to the others.
//
// Raw factors are computed per asset, undefined ones are imputed from the peer set, and
// each factor is normalized into a Z-score against the peer set. The composite is the
// mean of the three Z-scores. Scores are returned in input order.
func ScoreAssets(inputs []FactorInput) []FactorScore {
	n := len(inputs)
	if n == 0 {
		return nil
	}

	val := make([]float64, n)
	qual := make([]float64, n)
	vol := make([]float64, n)
	valOK := make([]bool, n)
	qualOK := make([]bool, n)
	volOK := make([]bool, n)

	for i, in := range inputs {
		prices := in.Prices
		if prices == nil {
			prices = in.Asset.Prices.Slice()
		}
		val[i], valOK[i] = Valuation(in.Asset)
		qual[i], qualOK[i] = Quality(in.Asset)
		vol[i], volOK[i] = LowVolatility(in.Asset, prices)
	}

	valImputed := impute(val, valOK, firstQuartile)
	qualImputed := impute(qual, qualOK, stat.Mean)
	volImputed := impute(vol, volOK, stat.Mean)

	zVal, zQual, zVol := zScores(val), zScores(qual), zScores(vol)

	scores := make([]FactorScore, n)
	for i, in := range inputs {
		s := FactorScore{
			Ticker:        in.Asset.Ticker,
			Valuation:     zVal[i],
			Quality:       zQual[i],
			LowVolatility: zVol[i],
			Composite:     (zVal[i] + zQual[i] + zVol[i]) / 3,
			Raw:           Factors{Valuation: val[i], Quality: qual[i], LowVolatility: vol[i]},
		}
		s.Imputed.Valuation = valImputed[i]
		s.Imputed.Quality = qualImputed[i]
		s.Imputed.LowVolatility = volImputed[i]
		scores[i] = s
	}
	return scores
}

// Valuation returns the earnings yield 1/PE. Loss making assets get a negative value.
// It is undefined when PE is missing or zero.
func Valuation(a *Asset) (float64, bool) {
	if a.PE == nil || *a.PE == 0 || math.IsNaN(*a.PE) {
		return 0, false
	}
	return 1 / *a.PE, true
}

// Quality returns the dividend yield (as a decimal) plus a growth term.
//
// The growth term is the dividend growth rate over the last five calendar years when at
// least two years of dividends exist, else the net margin when income and revenue are
// known, else 0. When the yield is unknown it is computed from the trailing twelve months
// of dividends. Quality is undefined when neither a yield nor a growth source exists.
func Quality(a *Asset) (float64, bool) {
	yield, hasYield := 0.0, false
	switch {
	case a.DividendYield != nil && !math.IsNaN(*a.DividendYield):
		yield, hasYield = *a.DividendYield/100, true
	case len(a.Dividends) > 0:
		yield, hasYield = TrailingYield(a)/100, true
	}

	growth, hasGrowth := DividendGrowth(a.Dividends)
	if !hasGrowth {
		growth, hasGrowth = netMargin(a)
	}
	if !hasYield && !hasGrowth {
		return 0, false
	}
	return yield + growth, true
}

// LowVolatility returns the inverse of the annualized volatility of prices when there
// are at least ten of them, else the inverse of |beta|, else the inverse of a default
// beta of 2. It is always defined.
func LowVolatility(a *Asset, prices []float64) (float64, bool) {
	if len(prices) >= minVolatilitySamples {
		if v := AnnualizedVolatility(prices); v > 0 {
			return 1 / v, true
		}
	}
	if a.Beta != nil && *a.Beta != 0 && !math.IsNaN(*a.Beta) {
		return 1 / math.Abs(*a.Beta), true
	}
	return 1 / defaultBeta, true
}

// DividendGrowth returns the compound annual growth rate of yearly dividend totals over
// the five years before the latest dividend year. It needs two distinct calendar years.
func DividendGrowth(dividends []Dividend) (float64, bool) {
	totals := make(map[int]float64)
	for _, d := range dividends {
		totals[d.Date.Year()] += d.Amount
	}
	if len(totals) < 2 {
		return 0, false
	}
	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	slices.Sort(years)

	latest := years[len(years)-1]
	earliest := years[0]
	for _, y := range years {
		if y >= latest-growthYears {
			earliest = y
			break
		}
	}
	if earliest == latest {
		return 0, false
	}
	first, last := totals[earliest], totals[latest]
	if first <= 0 || last <= 0 {
		// a CAGR from or to nothing is meaningless.
		return 0, true
	}
	return math.Pow(last/first, 1/float64(latest-earliest)) - 1, true
}

// TrailingYield returns the sum of dividends paid in the year before the latest price
// date, in percent of the current price. Without prices the latest dividend is the
// reference date.
func TrailingYield(a *Asset) float64 {
	if a.Price <= 0 || len(a.Dividends) == 0 {
		return 0
	}
	ref, _ := a.Prices.Latest()
	if a.Prices.Len() == 0 {
		ref = a.Dividends[len(a.Dividends)-1].Date
	}
	year := date.YearTo(ref)
	sum := 0.0
	for _, d := range a.Dividends {
		if year.Contains(d.Date) {
			sum += d.Amount
		}
	}
	return sum / a.Price * 100
}

func netMargin(a *Asset) (float64, bool) {
	if a.NetIncome == nil || a.Revenue == nil || *a.Revenue == 0 {
		return 0, false
	}
	return *a.NetIncome / *a.Revenue, true
}

// impute replaces undefined values by fill(valid values) and returns which values were
// replaced. When no value is valid, every value is replaced by 0.
func impute(values []float64, ok []bool, fill func([]float64, []float64) float64) []bool {
	valid := make([]float64, 0, len(values))
	for i, v := range values {
		if ok[i] {
			valid = append(valid, v)
		}
	}
	replacement := 0.0
	if len(valid) > 0 {
		replacement = fill(valid, nil)
	}
	imputed := make([]bool, len(values))
	for i := range values {
		if !ok[i] {
			values[i] = replacement
			imputed[i] = true
		}
	}
	return imputed
}

// firstQuartile returns the sorted value at index floor(n/4).
// The signature matches gonum's stat.Mean so both can be used as imputation.
func firstQuartile(values, _ []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted[len(sorted)/4]
}

// zScores normalizes values by the population mean and standard deviation.
// A degenerate set (zero deviation) yields zero scores.
func zScores(values []float64) []float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	z := make([]float64, len(values))
	if std == 0 || math.IsNaN(std) {
		return z
	}
	for i, v := range values {
		z[i] = (v - mean) / std
	}
	return z
}

// ScoreAligned scores assets on a common date grid, so that volatilities are measured
// over the same period for every peer.
func ScoreAligned(assets []*Asset) []FactorScore {
	_, aligned := alignAssets(assets)
	inputs := make([]FactorInput, len(assets))
	for i, a := range assets {
		inputs[i] = FactorInput{Asset: a, Prices: aligned[i]}
	}
	return ScoreAssets(inputs)
}
