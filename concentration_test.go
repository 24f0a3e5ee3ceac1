package advisor

import (
	"errors"
	"slices"
	"testing"
)

func lookThroughPortfolio(scale int64) Portfolio {
	voo := fund("VOO", 100, Constituent{Ticker: "AAPL", Weight: 7, Sector: "Technology"}, Constituent{Ticker: "MSFT", Weight: 6})
	return Portfolio{
		{Asset: voo, Shares: 6 * scale},
		{Asset: stock("AAPL", 200), Shares: 2 * scale},
	}
}

func TestAnalyzeOverlap(t *testing.T) {
	r := AnalyzeOverlap(lookThroughPortfolio(1))

	if len(r.Top) != 2 {
		t.Fatalf("AnalyzeOverlap() top = %v, want 2 exposures", r.Top)
	}
	aapl, msft := r.Top[0], r.Top[1]
	if aapl.Ticker != "AAPL" || !near(aapl.Percent, 44.2, 1e-9) {
		t.Errorf("AnalyzeOverlap() top[0] = %+v, want AAPL 44.2%%", aapl)
	}
	if want := []string{"VOO", "AAPL"}; !slices.Equal(aapl.Via, want) {
		t.Errorf("AnalyzeOverlap() AAPL via = %v, want %v", aapl.Via, want)
	}
	if aapl.Sector != "Technology" {
		t.Errorf("AnalyzeOverlap() AAPL sector = %q, want Technology", aapl.Sector)
	}
	if msft.Ticker != "MSFT" || !near(msft.Percent, 3.6, 1e-9) {
		t.Errorf("AnalyzeOverlap() top[1] = %+v, want MSFT 3.6%%", msft)
	}
	if !near(r.Score, 47.8, 1e-9) || r.Level != ConcentrationHigh {
		t.Errorf("AnalyzeOverlap() score = %v %s, want 47.8 High", r.Score, r.Level)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("AnalyzeOverlap() warnings = %v, want none", r.Warnings)
	}
}

func TestAnalyzeOverlap_ScaleIndependent(t *testing.T) {
	small := AnalyzeOverlap(lookThroughPortfolio(1))
	large := AnalyzeOverlap(lookThroughPortfolio(1000))
	if !near(small.Score, large.Score, 1e-9) {
		t.Errorf("AnalyzeOverlap() score = %v at scale 1 and %v at scale 1000, want equal", small.Score, large.Score)
	}
}

func TestAnalyzeOverlap_Bound(t *testing.T) {
	overweight := fund("BAD", 10, Constituent{Ticker: "X", Weight: 60}, Constituent{Ticker: "Y", Weight: 60}, Constituent{Ticker: "Z", Weight: 60})
	tests := []struct {
		name string
		p    Portfolio
	}{
		{"empty", nil},
		{"zero shares", Portfolio{{Asset: stock("A", 10)}}},
		{"single stock", Portfolio{{Asset: stock("A", 10), Shares: 1}}},
		{"overweight fund", Portfolio{{Asset: overweight, Shares: 5}}},
	}
	for _, tt := range tests {
		r := AnalyzeOverlap(tt.p)
		if r.Score < 0 || r.Score > 100 {
			t.Errorf("AnalyzeOverlap(%s) score = %v, want in [0,100]", tt.name, r.Score)
		}
	}

	r := AnalyzeOverlap(Portfolio{{Asset: overweight, Shares: 5}})
	if r.Score != 100 {
		t.Errorf("AnalyzeOverlap(overweight) score = %v, want 100", r.Score)
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Code != WarnOverweightFund || r.Warnings[0].Ticker != "BAD" {
		t.Errorf("AnalyzeOverlap(overweight) warnings = %v, want one %s for BAD", r.Warnings, WarnOverweightFund)
	}
}

func TestAnalyzeOverlap_Order(t *testing.T) {
	var p Portfolio
	for _, ticker := range []string{"D", "B", "C", "A"} {
		p = append(p, Item{Asset: stock(ticker, 10), Shares: 1})
	}
	for i := range 8 {
		p = append(p, Item{Asset: stock(string(rune('E'+i)), 1), Shares: 1})
	}

	r := AnalyzeOverlap(p)

	var got []string
	for _, e := range r.Top[:4] {
		got = append(got, e.Ticker)
	}
	if want := []string{"A", "B", "C", "D"}; !slices.Equal(got, want) {
		t.Errorf("AnalyzeOverlap() top tickers = %v, want %v", got, want)
	}
	if len(r.Top) != 10 || len(r.Exposures) != 12 {
		t.Errorf("AnalyzeOverlap() = %d top and %d exposures, want 10 and 12", len(r.Top), len(r.Exposures))
	}
	// 4×10/48 + 6×1/48
	if want := 4600.0 / 48; !near(r.Score, want, 1e-9) {
		t.Errorf("AnalyzeOverlap() score = %v, want %v", r.Score, want)
	}
}

func TestDistributeBudget(t *testing.T) {
	p := lookThroughPortfolio(1)
	// a candidate not held yet overlaps nothing.
	p = append(p, Item{Asset: stock("GLD", 50)})

	recs, err := DistributeBudget(p, 1000)
	if err != nil {
		t.Fatalf("DistributeBudget() error = %v", err)
	}

	scores := []float64{100.0 / 14, 100.0 / 101, 100}
	total := scores[0] + scores[1] + scores[2]
	sum := 0.0
	for i, r := range recs {
		if want := 1000 * scores[i] / total; !near(r.Amount, want, 1e-9) {
			t.Errorf("DistributeBudget() %s = %v, want %v", r.Ticker, r.Amount, want)
		}
		sum += r.Amount
	}
	if !near(sum, 1000, 1e-9) {
		t.Errorf("DistributeBudget() total = %v, want 1000", sum)
	}
	if recs[0].Overlap != 13 || recs[2].Overlap != 0 {
		t.Errorf("DistributeBudget() overlaps = %v, %v, want 13, 0", recs[0].Overlap, recs[2].Overlap)
	}
	if recs[2].Reason == "" || recs[0].Reason == recs[2].Reason {
		t.Errorf("DistributeBudget() reasons = %q, %q, want distinct explanations", recs[0].Reason, recs[2].Reason)
	}

	if _, err := DistributeBudget(p, -1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("DistributeBudget(-1) error = %v, want ErrInvalidInput", err)
	}
	if recs, err := DistributeBudget(nil, 100); err != nil || recs != nil {
		t.Errorf("DistributeBudget(nil) = %v, %v, want nil, nil", recs, err)
	}
}

func TestDistributeShares(t *testing.T) {
	p := Portfolio{
		{Asset: stock("A", 30), Shares: 1},
		{Asset: stock("B", 70), Shares: 1},
	}

	shares, err := DistributeShares(p, 200)
	if err != nil {
		t.Fatalf("DistributeShares() error = %v", err)
	}

	// both stocks overlap themselves equally: 100 each, floored by price.
	want := []ShareRecommendation{
		{Ticker: "A", Shares: 3, Amount: 90},
		{Ticker: "B", Shares: 1, Amount: 70},
	}
	for i, w := range want {
		got := shares[i]
		if got.Ticker != w.Ticker || got.Shares != w.Shares || got.Amount != w.Amount {
			t.Errorf("DistributeShares()[%d] = %+v, want %+v", i, got, w)
		}
	}
}
