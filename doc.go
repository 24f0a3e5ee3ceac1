// Package advisor computes quantitative recommendations to build and rebalance a
// portfolio of stocks and ETFs.
//
// The core functionalities include:
//   - History Alignment: Unioning heterogeneous price calendars into one date grid
//     and forward-filling gaps, so that every downstream statistic works on series
//     of equal length.
//   - Factor Scoring: Valuation, quality and low-volatility factors normalized into
//     Z-scores against the peer set being ranked together.
//   - Return Forecasting: Mapping a composite Z-score to an expected return by
//     benchmark volatility scaling.
//   - Risk Modeling: Log returns, population covariance and annualized statistics.
//   - Discrete Optimization: A greedy allocator buying whole shares in lots with a
//     look-ahead on the resulting portfolio.
//   - Concentration Analysis: Look-through exposure to single stocks held via ETFs
//     and a diversification-aware budget distributor.
//   - Monte Carlo Projection: Correlated asset paths and the percentile cone of the
//     portfolio value.
//
// Every computation is pure: it works on the asset records it is given and keeps no
// state between calls. Records are read from JSONL snapshots (DecodeSnapshot) or
// from market data provider payloads (Import, Fetch). Caching them and presenting
// results belong to the callers, see the cache, renderer and cmd packages.
package advisor
