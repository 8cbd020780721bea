package writer

import (
	"time"

	"github.com/rickgao/itch-vwap/internal/vwap"
)

// checkpointRow is one persisted (instrument, checkpoint) cell.
type checkpointRow struct {
	RunID        string
	SessionDate  *string
	Instrument   string
	Checkpoint   int // column index
	Label        string
	CheckpointAt *time.Time
	Shares       int64
	Notional     string
	VWAP         *string // nil when absent
}

// transform flattens table into one row per cell, in row then column order.
func transform(run RunInfo, table *vwap.Table, precision int) []checkpointRow {
	var date *string
	if !run.SessionDate.IsZero() {
		s := run.SessionDate.Format("2006-01-02")
		date = &s
	}

	at := make([]*time.Time, len(table.Checkpoints))
	if date != nil && run.Session != nil {
		for i, cp := range table.Checkpoints {
			t := run.Session.CheckpointTime(run.SessionDate, cp)
			at[i] = &t
		}
	}

	runID := run.ID.String()
	rows := make([]checkpointRow, 0, len(table.Rows)*len(table.Checkpoints))
	for _, r := range table.Rows {
		for i, cell := range r.Cells {
			row := checkpointRow{
				RunID:        runID,
				SessionDate:  date,
				Instrument:   r.Stock,
				Checkpoint:   i,
				Label:        table.Checkpoints[i].Label(),
				CheckpointAt: at[i],
				Shares:       int64(cell.Shares),
				Notional:     cell.Notional.String(),
			}
			if v, ok := formatVWAP(cell, precision); ok {
				row.VWAP = &v
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// formatVWAP renders a cell's VWAP rounded to precision decimal places.
func formatVWAP(cell vwap.Cell, precision int) (string, bool) {
	if !cell.VWAP.Valid {
		return "", false
	}
	return cell.VWAP.Decimal.StringFixed(int32(precision)), true
}
