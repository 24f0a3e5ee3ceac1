package advisor

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/advisor/date"
)

func TestImport(t *testing.T) {
	payload := `{
		"symbol": "KO",
		"name": "Coca-Cola",
		"price": "61,25",
		"peRatio": 24.5,
		"beta": null,
		"dividendYield": "3.1%",
		"history": [
			{"date": "2025-01-03", "close": 61.0},
			{"date": "2025-01-02T00:00:00Z", "close": 60.5}
		],
		"dividends": [
			{"date": 1743465600, "amount": 0.51},
			{"date": "2024-04-01", "amount": 0.485}
		]
	}`

	a, err := Import(strings.NewReader(payload), DefaultFieldPaths)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if a.Ticker != "KO" || a.Name != "Coca-Cola" || a.Price != 61.25 {
		t.Errorf("Import() = %s %q %v, want KO \"Coca-Cola\" 61.25", a.Ticker, a.Name, a.Price)
	}
	if a.PE == nil || *a.PE != 24.5 {
		t.Errorf("Import() PE = %v, want 24.5", a.PE)
	}
	if a.Beta != nil || a.NetIncome != nil {
		t.Errorf("Import() beta, net income = %v, %v, want unknown", a.Beta, a.NetIncome)
	}
	if a.DividendYield == nil || *a.DividendYield != 3.1 {
		t.Errorf("Import() dividend yield = %v, want 3.1", a.DividendYield)
	}
	if day, p := a.Prices.First(); day != date.MustParse("2025-01-02") || p != 60.5 {
		t.Errorf("Import() first price = %s %v, want 2025-01-02 60.5", day, p)
	}
	if len(a.Dividends) != 2 || a.Dividends[0].Date != date.MustParse("2024-04-01") || a.Dividends[1].Date != date.MustParse("2025-04-01") {
		t.Errorf("Import() dividends = %v, want 2024-04-01 then 2025-04-01", a.Dividends)
	}
}

func TestImport_Holdings(t *testing.T) {
	payload := `{"data": {"fund": "VT", "quote": {"last": 110}, "top": [
		{"name": "AAPL", "pct": 4.2, "gics": "Technology"},
		{"name": "MSFT", "pct": 3.9}
	]}}`
	paths := FieldPaths{
		Ticker:        "$.data.fund",
		Price:         "$.data.quote.last",
		Holdings:      "$.data.top[*]",
		HoldingTicker: "$.name",
		HoldingWeight: "$.pct",
		HoldingSector: "$.gics",
	}

	a, err := Import(strings.NewReader(payload), paths)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	want := []Constituent{{"AAPL", 4.2, "Technology"}, {"MSFT", 3.9, ""}}
	if len(a.Holdings) != len(want) {
		t.Fatalf("Import() holdings = %v, want %v", a.Holdings, want)
	}
	for i := range want {
		if a.Holdings[i] != want[i] {
			t.Errorf("Import() holding %d = %v, want %v", i, a.Holdings[i], want[i])
		}
	}
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"no ticker", `{"price": 1}`, ErrInvalidInput},
		{"no price", `{"symbol": "A"}`, ErrInvalidInput},
		{"negative price", `{"symbol": "A", "price": -2}`, ErrNegativePrice},
	}
	for _, tt := range tests {
		if _, err := Import(strings.NewReader(tt.payload), DefaultFieldPaths); !errors.Is(err, tt.want) {
			t.Errorf("Import(%s) error = %v, want %v", tt.name, err, tt.want)
		}
	}
	if _, err := Import(strings.NewReader(`not json`), DefaultFieldPaths); err == nil {
		t.Errorf("Import(not json) error = nil, want error")
	}
}
