package advisor

import (
	"math"

	"github.com/etnz/advisor/date"
)

// history is a helper for test to create a daily price history starting on start.
func history(start string, prices ...float64) date.History[float64] {
	var h date.History[float64]
	on := date.MustParse(start)
	for i, p := range prices {
		h.Append(on.Add(i), p)
	}
	return h
}

// near reports whether a and b are equal up to tol.
func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// stock is a helper for test to create a priced asset.
func stock(ticker string, price float64) *Asset { return &Asset{Ticker: ticker, Price: price} }

// fund is a helper for test to create an ETF with look-through holdings.
func fund(ticker string, price float64, holdings ...Constituent) *Asset {
	return &Asset{Ticker: ticker, Price: price, Holdings: holdings}
}
