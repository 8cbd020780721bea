package resolver

import (
	"log/slog"
	"time"

	"github.com/rickgao/itch-vwap/internal/model"
	"github.com/rickgao/itch-vwap/internal/reference"
)

// Input holds the materialized records of one session.
type Input struct {
	Trades           []model.Trade
	Executions       []model.OrderExecuted
	PricedExecutions []model.OrderExecutedWithPrice
}

// Stats contains join counters.
type Stats struct {
	FromTrades           int64
	FromExecutions       int64
	FromPricedExecutions int64
	Unmatched            int64 // no table entry for the reference
	Unresolvable         int64 // entry exists but its stock did not decode
}

// Resolved returns the total number of resolved trades.
func (s Stats) Resolved() int64 {
	return s.FromTrades + s.FromExecutions + s.FromPricedExecutions
}

// Resolver joins executions against a reference table.
type Resolver struct {
	refs   *reference.Table
	logger *slog.Logger
}

// New creates a Resolver. refs must hold the final state of the session.
func New(refs *reference.Table, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{refs: refs, logger: logger}
}

// Resolve produces resolved trades from in: trades first, then executions,
// then priced executions, each in input order.
func (r *Resolver) Resolve(in Input) ([]model.ResolvedTrade, Stats) {
	start := time.Now()
	var stats Stats

	out := make([]model.ResolvedTrade, 0, len(in.Trades)+len(in.Executions)+len(in.PricedExecutions))

	for _, m := range in.Trades {
		out = append(out, model.NewResolvedTrade(m.Stock, m.Timestamp, m.Shares, m.Price, model.SourceTrade))
		stats.FromTrades++
	}

	for _, m := range in.Executions {
		e, ok := r.lookup(m.Reference, &stats)
		if !ok {
			continue
		}
		out = append(out, model.NewResolvedTrade(e.Stock, m.Timestamp, m.Shares, e.Price, model.SourceExecution))
		stats.FromExecutions++
	}

	for _, m := range in.PricedExecutions {
		e, ok := r.lookup(m.Reference, &stats)
		if !ok {
			continue
		}
		out = append(out, model.NewResolvedTrade(e.Stock, m.Timestamp, m.Shares, m.Price, model.SourceExecutionWithPrice))
		stats.FromPricedExecutions++
	}

	r.logger.Debug("resolved trades",
		"resolved", stats.Resolved(),
		"unmatched", stats.Unmatched,
		"unresolvable", stats.Unresolvable,
		"duration", time.Since(start),
	)

	return out, stats
}

func (r *Resolver) lookup(ref uint64, stats *Stats) (reference.Entry, bool) {
	e, ok := r.refs.Get(ref)
	if !ok {
		stats.Unmatched++
		return reference.Entry{}, false
	}
	if !e.Resolvable {
		stats.Unresolvable++
		return reference.Entry{}, false
	}
	return e, true
}
