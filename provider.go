package advisor

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/advisor/date"
)

// FieldPaths locates the fields of an asset in a market data provider payload, with
// JSONPath expressions.
//
// Series paths (History, Dividends, Holdings) select a list; the element paths are then
// evaluated against each element. An empty path skips the field.
type FieldPaths struct {
	Ticker        string `yaml:"ticker"`
	Name          string `yaml:"name"`
	Price         string `yaml:"price"`
	PE            string `yaml:"pe"`
	Beta          string `yaml:"beta"`
	DividendYield string `yaml:"dividend_yield"`
	NetIncome     string `yaml:"net_income"`
	Revenue       string `yaml:"revenue"`

	History      string `yaml:"history"`
	HistoryDate  string `yaml:"history_date"`
	HistoryClose string `yaml:"history_close"`

	Dividends      string `yaml:"dividends"`
	DividendDate   string `yaml:"dividend_date"`
	DividendAmount string `yaml:"dividend_amount"`

	Holdings      string `yaml:"holdings"`
	HoldingTicker string `yaml:"holding_ticker"`
	HoldingWeight string `yaml:"holding_weight"`
	HoldingSector string `yaml:"holding_sector"`
}

// DefaultFieldPaths reads a flat quote payload.
var DefaultFieldPaths = FieldPaths{
	Ticker:        "$.symbol",
	Name:          "$.name",
	Price:         "$.price",
	PE:            "$.peRatio",
	Beta:          "$.beta",
	DividendYield: "$.dividendYield",
	NetIncome:     "$.netIncome",
	Revenue:       "$.revenue",

	History:      "$.history[*]",
	HistoryDate:  "$.date",
	HistoryClose: "$.close",

	Dividends:      "$.dividends[*]",
	DividendDate:   "$.date",
	DividendAmount: "$.amount",

	Holdings:      "$.holdings[*]",
	HoldingTicker: "$.symbol",
	HoldingWeight: "$.weight",
	HoldingSector: "$.sector",
}

// Import reads a provider JSON payload into an asset record.
//
// Ticker and price are required, every other field is optional: a path that does not
// match leaves the field unknown.
func Import(r io.Reader, paths FieldPaths) (*Asset, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot decode provider payload: %w", err)
	}

	a := new(Asset)
	var err error
	if a.Ticker, err = lookupString(jobj, paths.Ticker); err != nil {
		return nil, fmt.Errorf("%w: missing ticker: %v", ErrInvalidInput, err)
	}
	a.Name, _ = lookupString(jobj, paths.Name)
	if a.Price, err = lookupFloat(jobj, paths.Price); err != nil {
		return nil, fmt.Errorf("%w: %s missing price: %v", ErrInvalidInput, a.Ticker, err)
	}
	a.PE = optionalFloat(jobj, paths.PE)
	a.Beta = optionalFloat(jobj, paths.Beta)
	a.DividendYield = optionalFloat(jobj, paths.DividendYield)
	a.NetIncome = optionalFloat(jobj, paths.NetIncome)
	a.Revenue = optionalFloat(jobj, paths.Revenue)

	for _, jelem := range lookupList(jobj, paths.History) {
		on, err := lookupDate(jelem, paths.HistoryDate)
		if err != nil {
			return nil, fmt.Errorf("%s history: %w", a.Ticker, err)
		}
		p, err := lookupFloat(jelem, paths.HistoryClose)
		if err != nil {
			return nil, fmt.Errorf("%s history on %s: %w", a.Ticker, on, err)
		}
		a.Prices.Append(on, p)
	}

	for _, jelem := range lookupList(jobj, paths.Dividends) {
		on, err := lookupDate(jelem, paths.DividendDate)
		if err != nil {
			return nil, fmt.Errorf("%s dividends: %w", a.Ticker, err)
		}
		amount, err := lookupFloat(jelem, paths.DividendAmount)
		if err != nil {
			return nil, fmt.Errorf("%s dividend on %s: %w", a.Ticker, on, err)
		}
		a.Dividends = append(a.Dividends, Dividend{Date: on, Amount: amount})
	}
	sortDividends(a.Dividends)

	for _, jelem := range lookupList(jobj, paths.Holdings) {
		var c Constituent
		if c.Ticker, err = lookupString(jelem, paths.HoldingTicker); err != nil {
			return nil, fmt.Errorf("%s holdings: %w", a.Ticker, err)
		}
		if c.Weight, err = lookupFloat(jelem, paths.HoldingWeight); err != nil {
			return nil, fmt.Errorf("%s holding %s: %w", a.Ticker, c.Ticker, err)
		}
		c.Sector, _ = lookupString(jelem, paths.HoldingSector)
		a.Holdings = append(a.Holdings, c)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// lookup evaluates path against jobj.
func lookup(jobj any, path string) (any, error) {
	if path == "" {
		return nil, fmt.Errorf("no path")
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}
	if jval == nil {
		return nil, fmt.Errorf("%q is null", path)
	}
	return jval, nil
}

func lookupList(jobj any, path string) []any {
	if path == "" {
		return nil
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	jlist, _ := jval.([]any)
	return jlist
}

func lookupString(jobj any, path string) (string, error) {
	jval, err := lookup(jobj, path)
	if err != nil {
		return "", err
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("%q is not a string: %v", path, jval)
	}
	return s, nil
}

// lookupFloat reads a number, providers sometimes send them as strings.
func lookupFloat(jobj any, path string) (float64, error) {
	jval, err := lookup(jobj, path)
	if err != nil {
		return math.NaN(), err
	}
	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		s := strings.ReplaceAll(v, ",", ".")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.TrimSuffix(s, "%")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), fmt.Errorf("%q is an invalid number %q: %w", path, v, err)
		}
		return f, nil
	}
	return math.NaN(), fmt.Errorf("%q is not a number: %v", path, jval)
}

func optionalFloat(jobj any, path string) *float64 {
	f, err := lookupFloat(jobj, path)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

// lookupDate reads a date either as a string or as unix seconds.
func lookupDate(jobj any, path string) (date.Date, error) {
	jval, err := lookup(jobj, path)
	if err != nil {
		return date.Date{}, err
	}
	switch v := jval.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return date.Of(t), nil
		}
		return date.Parse(v)
	case float64:
		return date.Of(time.Unix(int64(v), 0).UTC()), nil
	}
	return date.Date{}, fmt.Errorf("%q is not a date: %v", path, jval)
}

func sortDividends(dividends []Dividend) {
	slices.SortStableFunc(dividends, func(a, b Dividend) int { return a.Date.Compare(b.Date) })
}
