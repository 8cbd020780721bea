package writer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rickgao/itch-vwap/internal/vwap"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS vwap_checkpoints (
		run_id TEXT NOT NULL,
		session_date TEXT,
		instrument TEXT NOT NULL,
		checkpoint INTEGER NOT NULL,
		label TEXT NOT NULL,
		checkpoint_at TEXT,
		shares INTEGER NOT NULL,
		notional TEXT NOT NULL,
		vwap TEXT,
		PRIMARY KEY (run_id, instrument, checkpoint)
	)`

const sqliteInsert = `
	INSERT INTO vwap_checkpoints
		(run_id, session_date, instrument, checkpoint, label, checkpoint_at, shares, notional, vwap)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (run_id, instrument, checkpoint) DO NOTHING`

// SQLiteSink stores the table in a SQLite database file.
type SQLiteSink struct {
	db        *sql.DB
	precision int
	logger    *slog.Logger
	stats     Stats
}

// OpenSQLite opens (or creates) the database at path and ensures the
// vwap_checkpoints table exists.
func OpenSQLite(ctx context.Context, path string, precision int, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		logger.Warn("failed to set sqlite WAL mode", "error", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create vwap_checkpoints: %w", err)
	}

	return &SQLiteSink{db: db, precision: precision, logger: logger}, nil
}

// Write inserts every cell in one transaction.
func (s *SQLiteSink) Write(ctx context.Context, run RunInfo, table *vwap.Table) error {
	rows := transform(run, table, s.precision)
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var conflicts int64
	for _, r := range rows {
		var at sql.NullString
		if r.CheckpointAt != nil {
			at = sql.NullString{String: r.CheckpointAt.Format(time.RFC3339), Valid: true}
		}

		res, err := stmt.ExecContext(ctx,
			r.RunID, nullString(r.SessionDate), r.Instrument, r.Checkpoint, r.Label,
			at, r.Shares, r.Notional, nullString(r.VWAP))
		if err != nil {
			return fmt.Errorf("insert %s %s: %w", r.Instrument, r.Label, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			conflicts++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite tx: %w", err)
	}

	s.stats.Rows += int64(len(rows))
	s.stats.Inserts += int64(len(rows)) - conflicts
	s.stats.Conflicts += conflicts
	s.stats.Batches++

	s.logger.Debug("wrote sqlite table",
		"run_id", run.ID.String(),
		"count", len(rows),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// Stats returns what has been written so far.
func (s *SQLiteSink) Stats() Stats {
	return s.stats
}

// DB exposes the underlying handle for queries.
func (s *SQLiteSink) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
