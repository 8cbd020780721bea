package reference

import "github.com/rickgao/itch-vwap/internal/model"

// Entry is the last (stock, price) added for a reference.
type Entry struct {
	Stock string
	Price model.Price

	// Resolvable is false when the add order's stock bytes did not decode.
	// Executions against such an entry are dropped.
	Resolvable bool
}

// Table maps order reference numbers to entries.
// It is not safe for concurrent use; writes must finish before reads begin.
type Table struct {
	entries   map[uint64]Entry
	puts      int64
	overwrite int64
}

// NewTable creates an empty table with room for sizeHint references.
func NewTable(sizeHint int) *Table {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Table{entries: make(map[uint64]Entry, sizeHint)}
}

// Put stores e under ref, replacing any existing entry.
func (t *Table) Put(ref uint64, e Entry) {
	if _, ok := t.entries[ref]; ok {
		t.overwrite++
	}
	t.entries[ref] = e
	t.puts++
}

// PutOrder stores the entry described by an add order.
func (t *Table) PutOrder(m model.AddOrder) {
	t.Put(m.Reference, Entry{
		Stock:      m.Stock,
		Price:      m.Price,
		Resolvable: m.StockValid,
	})
}

// Get returns the entry for ref.
func (t *Table) Get(ref uint64) (Entry, bool) {
	e, ok := t.entries[ref]
	return e, ok
}

// Len returns the number of distinct references.
func (t *Table) Len() int {
	return len(t.entries)
}

// Stats returns table counters.
func (t *Table) Stats() Stats {
	return Stats{
		References: len(t.entries),
		Puts:       t.puts,
		Overwrites: t.overwrite,
	}
}

// Stats contains table counters.
type Stats struct {
	References int
	Puts       int64
	Overwrites int64
}
