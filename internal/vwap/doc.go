// Package vwap computes cumulative volume-weighted average prices at fixed
// intraday checkpoints.
//
// For every stock with at least one resolved trade and every checkpoint cp:
//
//	VWAP(stock, cp) = Σ notional(ts <= cp) / Σ shares(ts <= cp)
//
// A cell with a zero share sum has no VWAP (decimal.NullDecimal with
// Valid false). Trades are sorted per stock and checkpoints are swept once,
// carrying running sums forward.
package vwap
