package vwap

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/itch-vwap/internal/model"
)

// Cell holds the cumulative sums at one checkpoint.
type Cell struct {
	Shares   uint64
	Notional decimal.Decimal
	VWAP     decimal.NullDecimal // Valid is false when Shares is zero
}

// Row is one stock's cells, in checkpoint order.
type Row struct {
	Stock  string
	Trades int
	Cells  []Cell
}

// Table is the stock × checkpoint VWAP matrix. Rows are sorted by stock.
type Table struct {
	Checkpoints []Checkpoint
	Rows        []Row
}

// Labels returns the column titles.
func (t *Table) Labels() []string {
	labels := make([]string, len(t.Checkpoints))
	for i, cp := range t.Checkpoints {
		labels[i] = cp.Label()
	}
	return labels
}

// Row returns the row for stock.
func (t *Table) Row(stock string) (Row, bool) {
	i := sort.Search(len(t.Rows), func(i int) bool { return t.Rows[i].Stock >= stock })
	if i < len(t.Rows) && t.Rows[i].Stock == stock {
		return t.Rows[i], true
	}
	return Row{}, false
}

// Aggregator computes checkpointed VWAP tables.
type Aggregator struct {
	checkpoints []Checkpoint
	logger      *slog.Logger
}

// NewAggregator creates an Aggregator. cps must be non-empty and ascending.
func NewAggregator(cps []Checkpoint, logger *slog.Logger) (*Aggregator, error) {
	if err := Validate(cps); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	own := make([]Checkpoint, len(cps))
	copy(own, cps)
	return &Aggregator{checkpoints: own, logger: logger}, nil
}

// Checkpoints returns the configured checkpoints.
func (a *Aggregator) Checkpoints() []Checkpoint {
	out := make([]Checkpoint, len(a.checkpoints))
	copy(out, a.checkpoints)
	return out
}

// Aggregate builds the table for trades. The input slice is not modified.
func (a *Aggregator) Aggregate(trades []model.ResolvedTrade) *Table {
	start := time.Now()

	byStock := make(map[string][]model.ResolvedTrade)
	for _, tr := range trades {
		byStock[tr.Stock] = append(byStock[tr.Stock], tr)
	}

	stocks := make([]string, 0, len(byStock))
	for s := range byStock {
		stocks = append(stocks, s)
	}
	sort.Strings(stocks)

	table := &Table{
		Checkpoints: a.Checkpoints(),
		Rows:        make([]Row, 0, len(stocks)),
	}
	for _, s := range stocks {
		table.Rows = append(table.Rows, a.sweep(s, byStock[s]))
	}

	a.logger.Debug("aggregated vwap",
		"trades", len(trades),
		"stocks", len(stocks),
		"checkpoints", len(a.checkpoints),
		"duration", time.Since(start),
	)

	return table
}

// sweep sorts one stock's trades by timestamp and walks the checkpoints
// once, carrying the running sums forward.
func (a *Aggregator) sweep(stock string, trades []model.ResolvedTrade) Row {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})

	row := Row{
		Stock:  stock,
		Trades: len(trades),
		Cells:  make([]Cell, len(a.checkpoints)),
	}

	var shares uint64
	notional := decimal.Zero
	next := 0

	for i, cp := range a.checkpoints {
		cutoff := cp.Nanos()
		for next < len(trades) && trades[next].Timestamp <= cutoff {
			shares += uint64(trades[next].Shares)
			notional = notional.Add(trades[next].Notional())
			next++
		}
		row.Cells[i] = newCell(shares, notional)
	}

	return row
}

func newCell(shares uint64, notional decimal.Decimal) Cell {
	c := Cell{Shares: shares, Notional: notional}
	if shares > 0 {
		c.VWAP = decimal.NullDecimal{
			Decimal: notional.Div(decimal.NewFromInt(int64(shares))),
			Valid:   true,
		}
	}
	return c
}
