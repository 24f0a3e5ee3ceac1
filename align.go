package advisor

import (
	"github.com/etnz/advisor/date"
)

// AlignHistories aligns price histories on a common date grid.
//
// The grid starts on the latest first date among all histories (so every asset has an
// observation by the start) and contains every date, on or after the start, present in
// any history. Each asset is forward-filled on the grid: a missing day carries the last
// known price, trailing gaps included.
//
// If an asset has no observation on or before the start, its fill is 0 until its first
// observation. Callers should drop assets with too little history first.
//
// It returns the grid and one price slice per history, all of the grid's length.
// An empty history does not move the start and is filled with 0.
func AlignHistories(histories []*date.History[float64]) ([]date.Date, [][]float64) {
	if len(histories) == 0 {
		return nil, nil
	}

	var start date.Date
	for _, h := range histories {
		if h.Len() == 0 {
			continue
		}
		if first, _ := h.First(); first.After(start) {
			start = first
		}
	}

	var grid []date.Date
	for on := range date.Union(histories...) {
		if !on.Before(start) {
			grid = append(grid, on)
		}
	}

	aligned := make([][]float64, len(histories))
	for i, h := range histories {
		prices := make([]float64, len(grid))
		for j, on := range grid {
			// ValueAsOf is exactly the forward fill: the value on that day or the last before.
			prices[j], _ = h.ValueAsOf(on)
		}
		aligned[i] = prices
	}
	return grid, aligned
}

// AlignPrices is AlignHistories without the date grid.
func AlignPrices(histories []*date.History[float64]) [][]float64 {
	_, aligned := AlignHistories(histories)
	return aligned
}

// alignAssets aligns the price histories of the given assets.
func alignAssets(assets []*Asset) ([]date.Date, [][]float64) {
	histories := make([]*date.History[float64], len(assets))
	for i, a := range assets {
		histories[i] = &a.Prices
	}
	return AlignHistories(histories)
}
