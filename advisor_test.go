package advisor

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// wavy is a helper for test to create an asset with n daily prices oscillating around a trend.
func wavy(ticker string, n int, base, trend, amplitude, period float64) *Asset {
	prices := make([]float64, n)
	for t := range prices {
		prices[t] = base * math.Exp(trend*float64(t)+amplitude*math.Sin(float64(t)/period))
	}
	return &Asset{Ticker: ticker, Price: prices[n-1], Prices: history("2024-01-01", prices...)}
}

func testAdvisor() *Advisor {
	opts := DefaultOptions()
	opts.Projector = Projector{Paths: 200, Seed: seed(1)}
	opts.HorizonYears = 2
	return New(opts, zerolog.Nop())
}

func testRequest() Request {
	calm := wavy("CALM", 200, 50, 0.0004, 0.01, 3)
	calm.PE, calm.DividendYield = F(12), F(3)
	wild := wavy("WILD", 200, 80, 0.0008, 0.08, 5)
	wild.PE, wild.Beta = F(40), F(1.6)
	mid := wavy("MID", 200, 30, 0.0005, 0.03, 7)
	mid.PE, mid.NetIncome, mid.Revenue = F(18), F(10), F(80)
	young := wavy("YOUNG", 20, 10, 0.001, 0.02, 2)

	return Request{
		Name:       "test",
		Candidates: []*Asset{calm, wild, mid, young},
		Portfolio:  Portfolio{{Asset: calm, Shares: 10}},
		Budget:     1000,
	}
}

func TestAdvisor_Recommend(t *testing.T) {
	req := testRequest()
	rec, err := testAdvisor().Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(rec.Scores) != 4 {
		t.Errorf("Recommend() = %d scores, want 4", len(rec.Scores))
	}
	if want := []string{"CALM", "WILD", "MID"}; len(rec.Tickers) != 3 || rec.Tickers[0] != want[0] || rec.Tickers[2] != want[2] {
		t.Errorf("Recommend() tickers = %v, want %v", rec.Tickers, want)
	}
	if !hasWarning(rec.Warnings, WarnShortHistory, "YOUNG") {
		t.Errorf("Recommend() warnings = %v, want %s for YOUNG", rec.Warnings, WarnShortHistory)
	}
	if len(rec.Covariance) != 3 || len(rec.ExpectedReturns) != 3 {
		t.Errorf("Recommend() covariance, returns = %d, %d, want 3, 3", len(rec.Covariance), len(rec.ExpectedReturns))
	}

	o := rec.Optimization
	if o.Shares[0] < 10 {
		t.Errorf("Recommend() CALM shares = %d, want the 10 held kept", o.Shares[0])
	}
	cheapest := decimal.NewFromFloat(math.Min(req.Candidates[0].Price, math.Min(req.Candidates[1].Price, req.Candidates[2].Price)))
	if o.RemainingBudget.IsNegative() || !o.RemainingBudget.LessThan(cheapest) {
		t.Errorf("Recommend() remaining = %v, want in [0, %v)", o.RemainingBudget, cheapest)
	}

	if rec.Stats.Samples != 200 || rec.Stats.Volatility <= 0 {
		t.Errorf("Recommend() stats = %+v, want 200 samples and a volatility", rec.Stats)
	}
	if got, want := len(rec.Projection.Points), 2*12+1; got != want {
		t.Errorf("Recommend() projection = %d points, want %d", got, want)
	}
	value := 0.0
	for j, c := range req.Candidates[:3] {
		value += float64(o.Shares[j]) * c.Price
	}
	if got := rec.Projection.Points[0].Median; !near(got, value, 1e-6) {
		t.Errorf("Recommend() projection starts at %v, want %v", got, value)
	}
	if rec.Overlap.Score <= 0 || rec.Overlap.Score > 100 {
		t.Errorf("Recommend() overlap score = %v, want in (0,100]", rec.Overlap.Score)
	}
	if len(rec.Distribution) != 1 || !near(rec.Distribution[0].Amount, 1000, 1e-9) {
		t.Errorf("Recommend() distribution = %+v, want the budget on CALM", rec.Distribution)
	}
}

func TestAdvisor_RecommendInvalid(t *testing.T) {
	req := testRequest()
	req.Candidates = append(req.Candidates, stock("BAD", -1))
	if _, err := testAdvisor().Recommend(context.Background(), req); !errors.Is(err, ErrNegativePrice) {
		t.Errorf("Recommend() error = %v, want ErrNegativePrice", err)
	}

	req = testRequest()
	req.Budget = -5
	if _, err := testAdvisor().Recommend(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Recommend(negative budget) error = %v, want ErrInvalidInput", err)
	}
}

func TestAdvisor_RecommendNoHistory(t *testing.T) {
	req := Request{Candidates: []*Asset{stock("A", 10), stock("B", 20)}, Budget: 100}

	rec, err := testAdvisor().Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(rec.Tickers) != 0 || !rec.Optimization.RemainingBudget.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Recommend() = %v tickers, remaining %v, want none and the full budget", rec.Tickers, rec.Optimization.RemainingBudget)
	}
	if !hasWarning(rec.Warnings, WarnNoFactorData, "") {
		t.Errorf("Recommend() warnings = %v, want %s", rec.Warnings, WarnNoFactorData)
	}
}

func TestAdvisor_RecommendAll(t *testing.T) {
	reqs := make([]Request, 5)
	for i := range reqs {
		reqs[i] = testRequest()
		reqs[i].Name = string(rune('a' + i))
		reqs[i].Budget = float64(500 + 100*i)
	}

	recs, err := testAdvisor().RecommendAll(context.Background(), reqs, 2)
	if err != nil {
		t.Fatalf("RecommendAll() error = %v", err)
	}
	for i, rec := range recs {
		if rec.Name != reqs[i].Name {
			t.Errorf("RecommendAll()[%d] = %q, want %q", i, rec.Name, reqs[i].Name)
		}
		if i > 0 && rec.RunID == recs[i-1].RunID {
			t.Errorf("RecommendAll()[%d] run ID is reused", i)
		}
	}

	reqs[3].Budget = -1
	if _, err := testAdvisor().RecommendAll(context.Background(), reqs, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("RecommendAll(invalid) error = %v, want ErrInvalidInput", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testAdvisor().RecommendAll(ctx, reqs[:1], 1); !errors.Is(err, context.Canceled) {
		t.Errorf("RecommendAll(canceled) error = %v, want context.Canceled", err)
	}
}

func TestFactorWarnings(t *testing.T) {
	scores := make([]FactorScore, 3)
	for i := range scores {
		scores[i].Ticker = string(rune('A' + i))
		scores[i].Imputed.Quality = true
	}
	scores[1].Imputed.Valuation = true

	got := factorWarnings(scores)

	if len(got) != 2 {
		t.Fatalf("factorWarnings() = %v, want 2 warnings", got)
	}
	if got[0].Code != WarnImputedValuation || got[0].Ticker != "B" {
		t.Errorf("factorWarnings()[0] = %v, want %s for B", got[0], WarnImputedValuation)
	}
	if got[1].Code != WarnNoFactorData {
		t.Errorf("factorWarnings()[1] = %v, want %s", got[1], WarnNoFactorData)
	}
}

func hasWarning(warnings []Warning, code WarningCode, ticker string) bool {
	for _, w := range warnings {
		if w.Code == code && (ticker == "" || w.Ticker == ticker) {
			return true
		}
	}
	return false
}
