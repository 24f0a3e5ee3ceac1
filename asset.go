package advisor

import (
	"errors"
	"fmt"
	"math"

	"github.com/etnz/advisor/date"
)

var (
	// ErrInvalidInput reports a malformed record that cannot be given a reasonable default.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNegativePrice reports a negative (or NaN) price.
	ErrNegativePrice = fmt.Errorf("%w: negative price", ErrInvalidInput)
	// ErrDimension reports vectors and matrices whose sizes do not match.
	ErrDimension = fmt.Errorf("%w: dimension mismatch", ErrInvalidInput)
)

// Dividend is a single dividend payment per share.
type Dividend struct {
	Date   date.Date `json:"date"`
	Amount float64   `json:"amount"`
}

// Constituent is a look-through holding of a fund.
type Constituent struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"` // weight in the parent fund, 0-100
	Sector string  `json:"sector,omitempty"`
}

// Asset is the snapshot of a stock or an ETF, as supplied by market data collaborators.
//
// Optional fundamentals are pointers: nil means the value is unknown, which is
// different from zero.
type Asset struct {
	Ticker        string
	Name          string
	Price         float64
	PE            *float64 // price to earnings ratio
	Beta          *float64
	DividendYield *float64 // trailing yield in percent
	NetIncome     *float64
	Revenue       *float64
	Prices        date.History[float64]
	Dividends     []Dividend // chronological
	Holdings      []Constituent
}

// IsFund returns true if the asset has look-through holdings.
func (a *Asset) IsFund() bool { return len(a.Holdings) > 0 }

// Validate checks the integrity of the asset record.
func (a *Asset) Validate() error {
	if a.Ticker == "" {
		return fmt.Errorf("%w: empty ticker", ErrInvalidInput)
	}
	if a.Price < 0 || math.IsNaN(a.Price) {
		return fmt.Errorf("%s: %w %v", a.Ticker, ErrNegativePrice, a.Price)
	}
	for on, p := range a.Prices.Values() {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("%s: %w %v on %s", a.Ticker, ErrNegativePrice, p, on)
		}
	}
	for i := 1; i < len(a.Dividends); i++ {
		if a.Dividends[i].Date.Before(a.Dividends[i-1].Date) {
			return fmt.Errorf("%w: %s dividends are not chronological at %s", ErrInvalidInput, a.Ticker, a.Dividends[i].Date)
		}
	}
	for _, c := range a.Holdings {
		if c.Weight < 0 || c.Weight > 100 {
			return fmt.Errorf("%w: %s holding %s weight %v out of [0,100]", ErrInvalidInput, a.Ticker, c.Ticker, c.Weight)
		}
	}
	return nil
}

// Item is a position in a Portfolio.
type Item struct {
	Asset  *Asset
	Shares int64
}

// Value returns the market value of the position.
func (i Item) Value() float64 { return float64(i.Shares) * i.Asset.Price }

// Portfolio is an ordered collection of positions.
type Portfolio []Item

// Value returns the total market value of the portfolio.
func (p Portfolio) Value() float64 {
	total := 0.0
	for _, it := range p {
		total += it.Value()
	}
	return total
}

// Weights returns the value weight of each position, in 0-1, in portfolio order.
// An empty or zero-valued portfolio has zero weights.
func (p Portfolio) Weights() []float64 {
	w := make([]float64, len(p))
	total := p.Value()
	if total == 0 {
		return w
	}
	for i, it := range p {
		w[i] = it.Value() / total
	}
	return w
}

// Tickers returns the tickers of the positions, in portfolio order.
func (p Portfolio) Tickers() []string {
	t := make([]string, len(p))
	for i, it := range p {
		t[i] = it.Asset.Ticker
	}
	return t
}

// Validate checks every position.
func (p Portfolio) Validate() error {
	for _, it := range p {
		if it.Asset == nil {
			return fmt.Errorf("%w: position without asset", ErrInvalidInput)
		}
		if it.Shares < 0 {
			return fmt.Errorf("%w: %s has negative shares %d", ErrInvalidInput, it.Asset.Ticker, it.Shares)
		}
		if err := it.Asset.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// F returns a pointer to v, handy to fill optional fundamentals.
func F(v float64) *float64 { return &v }
