package itch

import (
	"fmt"

	"github.com/rickgao/itch-vwap/internal/model"
)

// Plausibility bounds. Values at or above a bound are rejected.
const (
	MaxReference         = 100_000_000_000_000 // 10^14
	MaxShares            = 100_000_000         // 10^8
	MaxPricedShares      = 1_000_000           // 10^6
	MaxMatchNumber       = 100_000_000_000     // 10^11
	MaxPricedMatchNumber = 10_000_000_000      // 10^10
)

// PrintableYes marks an execution that counts toward volume.
const PrintableYes byte = 'Y'

// Reason names why a decoded record was dropped.
type Reason string

const (
	ReasonSide         Reason = "side"
	ReasonReference    Reason = "reference"
	ReasonShares       Reason = "shares"
	ReasonMatchNumber  Reason = "match_number"
	ReasonNotPrintable Reason = "not_printable"
)

// RejectError reports a record that failed the plausibility filter.
type RejectError struct {
	Kind   model.Kind
	Reason Reason
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Kind, e.Reason)
}

// Filter applies the per-kind plausibility checks.
type Filter struct {
	// AllowSellTrades accepts Trade messages with an 'S' indicator.
	// The default only accepts 'B'.
	AllowSellTrades bool
}

// Check returns a *RejectError if rec must be dropped, nil otherwise.
func (f Filter) Check(rec model.Record) error {
	var reason Reason

	switch m := rec.(type) {
	case model.AddOrder:
		reason = checkAddOrder(m)
	case model.OrderExecuted:
		reason = checkOrderExecuted(m)
	case model.OrderExecutedWithPrice:
		reason = checkOrderExecutedWithPrice(m)
	case model.Trade:
		reason = f.checkTrade(m)
	}

	if reason != "" {
		return &RejectError{Kind: rec.Kind(), Reason: reason}
	}
	return nil
}

func checkAddOrder(m model.AddOrder) Reason {
	switch {
	case m.Side != model.SideBuy && m.Side != model.SideSell:
		return ReasonSide
	case m.Reference >= MaxReference:
		return ReasonReference
	case m.Shares >= MaxShares:
		return ReasonShares
	}
	// An undecodable stock is kept; it marks the reference unresolvable.
	return ""
}

func checkOrderExecuted(m model.OrderExecuted) Reason {
	switch {
	case m.Reference >= MaxReference:
		return ReasonReference
	case m.Shares >= MaxShares:
		return ReasonShares
	case m.MatchNumber >= MaxMatchNumber:
		return ReasonMatchNumber
	}
	return ""
}

func checkOrderExecutedWithPrice(m model.OrderExecutedWithPrice) Reason {
	switch {
	case m.Reference >= MaxReference:
		return ReasonReference
	case m.Shares >= MaxPricedShares:
		return ReasonShares
	case m.MatchNumber >= MaxPricedMatchNumber:
		return ReasonMatchNumber
	case m.Printable != PrintableYes:
		return ReasonNotPrintable
	}
	return ""
}

func (f Filter) checkTrade(m model.Trade) Reason {
	switch {
	case m.Reference != 0:
		return ReasonReference
	case m.Side != model.SideBuy && !(f.AllowSellTrades && m.Side == model.SideSell):
		return ReasonSide
	}
	return ""
}
