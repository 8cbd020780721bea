package writer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/itch-vwap/internal/vwap"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS vwap_checkpoints (
		run_id UUID NOT NULL,
		session_date DATE,
		instrument TEXT NOT NULL,
		checkpoint SMALLINT NOT NULL,
		label TEXT NOT NULL,
		checkpoint_at TIMESTAMPTZ,
		shares BIGINT NOT NULL,
		notional NUMERIC NOT NULL,
		vwap NUMERIC,
		PRIMARY KEY (run_id, instrument, checkpoint)
	)`

const postgresInsert = `
	INSERT INTO vwap_checkpoints
		(run_id, session_date, instrument, checkpoint, label, checkpoint_at, shares, notional, vwap)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (run_id, instrument, checkpoint) DO NOTHING`

// PostgresSink stores the table in PostgreSQL using batched inserts.
type PostgresSink struct {
	db        *pgxpool.Pool
	batchSize int
	precision int
	logger    *slog.Logger
	stats     Stats
	ownsPool  bool
}

// NewPostgresSink creates a PostgresSink over db. The caller keeps
// ownership of the pool.
func NewPostgresSink(db *pgxpool.Pool, batchSize, precision int, logger *slog.Logger) *PostgresSink {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &PostgresSink{
		db:        db,
		batchSize: batchSize,
		precision: precision,
		logger:    logger,
	}
}

// EnsureSchema creates the vwap_checkpoints table if it is missing.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create vwap_checkpoints: %w", err)
	}
	return nil
}

// Write inserts every cell in chunks of batchSize.
func (s *PostgresSink) Write(ctx context.Context, run RunInfo, table *vwap.Table) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}

	rows := transform(run, table, s.precision)
	for _, chunk := range chunks(rows, s.batchSize) {
		start := time.Now()

		conflicts, err := s.batchInsert(ctx, chunk)
		if err != nil {
			return fmt.Errorf("batch insert: %w", err)
		}

		s.stats.Rows += int64(len(chunk))
		s.stats.Inserts += int64(len(chunk) - conflicts)
		s.stats.Conflicts += int64(conflicts)
		s.stats.Batches++

		s.logger.Debug("flushed vwap rows",
			"run_id", run.ID.String(),
			"count", len(chunk),
			"conflicts", conflicts,
			"duration", time.Since(start),
		)
	}
	return nil
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (s *PostgresSink) batchInsert(ctx context.Context, rows []checkpointRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(postgresInsert,
			r.RunID, r.SessionDate, r.Instrument, r.Checkpoint, r.Label,
			r.CheckpointAt, r.Shares, r.Notional, r.VWAP)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

// Stats returns what has been written so far.
func (s *PostgresSink) Stats() Stats {
	return s.stats
}

// Close closes the pool when the sink opened it.
func (s *PostgresSink) Close() error {
	if s.ownsPool {
		s.db.Close()
	}
	return nil
}

// chunks splits rows into consecutive slices of at most size elements.
func chunks[T any](rows []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	out := make([][]T, 0, (len(rows)+size-1)/size)
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}
