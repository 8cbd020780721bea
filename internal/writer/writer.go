package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/itch-vwap/internal/calendar"
	"github.com/rickgao/itch-vwap/internal/config"
	"github.com/rickgao/itch-vwap/internal/database"
	"github.com/rickgao/itch-vwap/internal/vwap"
)

// ErrUnknownFormat is returned by Open for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Output formats.
const (
	FormatCSV      = "csv"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
)

// RunInfo identifies the run a table belongs to.
type RunInfo struct {
	ID          uuid.UUID
	SessionDate time.Time         // zero when unknown
	Session     *calendar.Session // optional; gives checkpoints a wall-clock time
}

// Sink receives a finished VWAP table.
type Sink interface {
	Write(ctx context.Context, run RunInfo, table *vwap.Table) error
	Close() error
}

// Stats counts what a sink has written.
type Stats struct {
	Rows      int64
	Inserts   int64
	Conflicts int64
	Batches   int64
}

// Open creates the sink selected by cfg.Format.
func Open(ctx context.Context, cfg config.OutputConfig, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Format {
	case FormatCSV:
		return CreateCSV(cfg.Path, cfg.Digits(), logger)
	case FormatSQLite:
		return OpenSQLite(ctx, cfg.Path, cfg.Digits(), logger)
	case FormatPostgres:
		pool, err := database.Connect(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		sink := NewPostgresSink(pool, cfg.BatchSize, cfg.Digits(), logger)
		sink.ownsPool = true
		return sink, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}
}
