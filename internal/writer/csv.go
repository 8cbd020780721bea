package writer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rickgao/itch-vwap/internal/vwap"
)

// Stdout is the path that sends CSV output to standard output.
const Stdout = "-"

// CSVSink writes the table as CSV with one row per instrument.
type CSVSink struct {
	w         *csv.Writer
	closer    io.Closer
	precision int
	logger    *slog.Logger
	stats     Stats
}

// NewCSVSink creates a CSVSink over w. The caller keeps ownership of w.
func NewCSVSink(w io.Writer, precision int, logger *slog.Logger) *CSVSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSink{
		w:         csv.NewWriter(w),
		precision: precision,
		logger:    logger,
	}
}

// CreateCSV creates (or truncates) the file at path. Stdout writes to
// standard output.
func CreateCSV(path string, precision int, logger *slog.Logger) (*CSVSink, error) {
	if path == Stdout {
		return NewCSVSink(os.Stdout, precision, logger), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv: %w", err)
	}
	s := NewCSVSink(f, precision, logger)
	s.closer = f
	return s, nil
}

// Write emits a header and one record per row. Absent cells are empty.
func (s *CSVSink) Write(ctx context.Context, run RunInfo, table *vwap.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	header := append([]string{"Stock"}, table.Labels()...)
	if err := s.w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range table.Rows {
		record[0] = row.Stock
		for i, cell := range row.Cells {
			v, _ := formatVWAP(cell, s.precision)
			record[i+1] = v
		}
		if err := s.w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
		s.stats.Rows++
	}

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Debug("wrote csv table", "run_id", run.ID.String(), "rows", len(table.Rows))
	return nil
}

// Stats returns what has been written so far.
func (s *CSVSink) Stats() Stats {
	return s.stats
}

// Close closes the underlying file, if the sink opened one.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if s.closer == nil {
		return s.w.Error()
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	return nil
}
