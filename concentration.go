package advisor

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// topExposures is the number of exposures that make the concentration score.
const topExposures = 10

// Exposure is the effective exposure of a portfolio to a single stock, directly or
// through funds.
type Exposure struct {
	Ticker  string   `json:"ticker"`
	Percent float64  `json:"percent"` // of the portfolio value, 0-100
	Sector  string   `json:"sector,omitempty"`
	Via     []string `json:"via"` // portfolio items contributing, in portfolio order
}

// ConcentrationLevel is a coarse classification of the concentration score.
type ConcentrationLevel string

const (
	ConcentrationLow    ConcentrationLevel = "Low"
	ConcentrationMedium ConcentrationLevel = "Medium"
	ConcentrationHigh   ConcentrationLevel = "High"
)

// OverlapReport is the look-through concentration of a portfolio.
type OverlapReport struct {
	Score     float64            `json:"score"` // sum of the top ten exposures, 0-100
	Level     ConcentrationLevel `json:"level"`
	Top       []Exposure         `json:"top"`       // the top ten exposures
	Exposures []Exposure         `json:"exposures"` // every exposure, descending
	Warnings  []Warning          `json:"warnings,omitempty"`
}

// AnalyzeOverlap computes the effective single-stock exposures of the portfolio.
//
// A fund contributes its weight times each constituent's weight in the fund, any other
// item contributes its own weight. Exposures are sorted descending, ties by ticker, and
// only positive exposures are kept. Weights are normalized, so the score does not depend
// on the portfolio size.
func AnalyzeOverlap(p Portfolio) OverlapReport {
	var report OverlapReport
	weights := p.Weights()
	index := make(map[string]int)
	var exposures []Exposure

	add := func(ticker, sector, via string, percent float64) {
		if percent <= 0 {
			return
		}
		i, ok := index[ticker]
		if !ok {
			i = len(exposures)
			index[ticker] = i
			exposures = append(exposures, Exposure{Ticker: ticker, Sector: sector})
		}
		e := &exposures[i]
		e.Percent += percent
		if e.Sector == "" {
			e.Sector = sector
		}
		if !slices.Contains(e.Via, via) {
			e.Via = append(e.Via, via)
		}
	}

	for i, it := range p {
		w := weights[i] * 100
		if !it.Asset.IsFund() {
			add(it.Asset.Ticker, "", it.Asset.Ticker, w)
			continue
		}
		total := 0.0
		for _, c := range it.Asset.Holdings {
			total += c.Weight
			add(c.Ticker, c.Sector, it.Asset.Ticker, w*c.Weight/100)
		}
		if total > 100 {
			report.Warnings = append(report.Warnings, warnf(WarnOverweightFund, it.Asset.Ticker, "constituent weights sum to %.2f%%", total))
		}
	}

	slices.SortFunc(exposures, func(a, b Exposure) int {
		if c := cmp.Compare(b.Percent, a.Percent); c != 0 {
			return c
		}
		return strings.Compare(a.Ticker, b.Ticker)
	})
	report.Exposures = exposures
	report.Top = exposures[:min(topExposures, len(exposures))]
	for _, e := range report.Top {
		report.Score += e.Percent
	}
	report.Score = math.Max(0, math.Min(100, report.Score))
	report.Level = concentrationLevel(report.Score)
	return report
}

func concentrationLevel(score float64) ConcentrationLevel {
	switch {
	case score < 15:
		return ConcentrationLow
	case score < 35:
		return ConcentrationMedium
	default:
		return ConcentrationHigh
	}
}

// BudgetRecommendation is the amount of cash to invest in a portfolio item.
type BudgetRecommendation struct {
	Ticker  string  `json:"ticker"`
	Amount  float64 `json:"amount"`
	Overlap float64 `json:"overlap"` // percent of the item in the most concentrated stocks
	Reason  string  `json:"reason"`
}

// DistributeBudget splits budget over the portfolio items favoring the ones that least
// overlap the portfolio's most concentrated stocks.
//
// An item's overlap is the sum, over the top ten exposures, of its weight in that stock:
// the constituent weight for a fund, 100 for the stock itself. Its score is
// 100/(1+overlap) and it receives budget·score/Σscore.
func DistributeBudget(p Portfolio, budget float64) ([]BudgetRecommendation, error) {
	if budget < 0 || math.IsNaN(budget) {
		return nil, fmt.Errorf("%w: negative budget %v", ErrInvalidInput, budget)
	}
	if len(p) == 0 {
		return nil, nil
	}
	top := AnalyzeOverlap(p).Top

	recs := make([]BudgetRecommendation, len(p))
	scores := make([]float64, len(p))
	total := 0.0
	for i, it := range p {
		overlap := 0.0
		var with []string
		for _, e := range top {
			if w := weightIn(it.Asset, e.Ticker); w > 0 {
				overlap += w
				with = append(with, e.Ticker)
			}
		}
		scores[i] = 100 / (1 + overlap)
		total += scores[i]
		recs[i] = BudgetRecommendation{Ticker: it.Asset.Ticker, Overlap: overlap, Reason: reason(overlap, with)}
	}
	for i := range recs {
		recs[i].Amount = budget * scores[i] / total
	}
	return recs, nil
}

// weightIn returns the percent of stock held in asset.
func weightIn(a *Asset, stock string) float64 {
	if !a.IsFund() {
		if a.Ticker == stock {
			return 100
		}
		return 0
	}
	w := 0.0
	for _, c := range a.Holdings {
		if c.Ticker == stock {
			w += c.Weight
		}
	}
	return w
}

func reason(overlap float64, with []string) string {
	if overlap == 0 {
		return "no overlap with the most concentrated stocks"
	}
	if overlap >= 100 {
		return fmt.Sprintf("is concentrated in %s", strings.Join(with, ", "))
	}
	return fmt.Sprintf("%.1f%% overlap with %s", overlap, strings.Join(with, ", "))
}

// ShareRecommendation is the number of whole shares to buy of a portfolio item.
type ShareRecommendation struct {
	Ticker string  `json:"ticker"`
	Shares int64   `json:"shares"`
	Amount float64 `json:"amount"` // shares × price
	Reason string  `json:"reason"`
}

// DistributeShares is DistributeBudget truncated to whole affordable shares. The cash
// left by the truncation is not redistributed.
func DistributeShares(p Portfolio, budget float64) ([]ShareRecommendation, error) {
	recs, err := DistributeBudget(p, budget)
	if err != nil {
		return nil, err
	}
	shares := make([]ShareRecommendation, len(recs))
	for i, r := range recs {
		s := ShareRecommendation{Ticker: r.Ticker, Reason: r.Reason}
		if price := p[i].Asset.Price; price > 0 {
			s.Shares = int64(math.Floor(r.Amount / price))
			s.Amount = float64(s.Shares) * price
		}
		shares[i] = s
	}
	return shares, nil
}
