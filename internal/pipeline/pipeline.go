package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/itch-vwap/internal/cursor"
	"github.com/rickgao/itch-vwap/internal/itch"
	"github.com/rickgao/itch-vwap/internal/model"
	"github.com/rickgao/itch-vwap/internal/reference"
	"github.com/rickgao/itch-vwap/internal/resolver"
	"github.com/rickgao/itch-vwap/internal/vwap"
)

// ErrAlreadyRan is returned when Run is called a second time.
var ErrAlreadyRan = errors.New("pipeline already ran")

// cancelCheckInterval is how many records pass between context checks.
const cancelCheckInterval = 4096

// stageBatchSize bounds how many records the staging goroutine takes at once.
const stageBatchSize = 1024

// Config holds pipeline settings.
type Config struct {
	Filter      itch.Filter
	Checkpoints []vwap.Checkpoint
	ReadBuffer  int  // cursor buffer size in bytes
	Concurrent  bool // decode and stage on separate goroutines
	BufferSize  int  // initial record buffer capacity in concurrent mode
	SizeHint    int  // expected number of order references
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Checkpoints: vwap.DefaultCheckpoints(),
		ReadBuffer:  cursor.DefaultBufferSize,
		BufferSize:  65536,
		SizeHint:    1 << 16,
	}
}

// Timings records how long each phase took.
type Timings struct {
	Decode    time.Duration
	Resolve   time.Duration
	Aggregate time.Duration
}

// Total returns the sum of all phases.
func (t Timings) Total() time.Duration {
	return t.Decode + t.Resolve + t.Aggregate
}

// Result is the outcome of a run.
type Result struct {
	RunID      uuid.UUID
	Table      *vwap.Table
	Trades     int
	Decode     itch.Stats
	References reference.Stats
	Resolve    resolver.Stats
	Timings    Timings
}

// Pipeline owns the state of one session run.
type Pipeline struct {
	cfg    Config
	runID  uuid.UUID
	logger *slog.Logger

	decoder *itch.Decoder
	refs    *reference.Table
	staged  resolver.Input
	agg     *vwap.Aggregator

	ran bool
}

// New creates a Pipeline reading the decompressed feed from src.
func New(cfg Config, src io.Reader, logger *slog.Logger) (*Pipeline, error) {
	if src == nil {
		return nil, errors.New("nil feed source")
	}
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.New()
	logger = logger.With("run_id", runID.String())

	agg, err := vwap.NewAggregator(cfg.Checkpoints, logger)
	if err != nil {
		return nil, fmt.Errorf("create aggregator: %w", err)
	}

	return &Pipeline{
		cfg:     cfg,
		runID:   runID,
		logger:  logger,
		decoder: itch.NewDecoder(cursor.New(src, cfg.ReadBuffer), cfg.Filter),
		refs:    reference.NewTable(cfg.SizeHint),
		agg:     agg,
	}, nil
}

// RunID returns the identifier stamped on this run's output.
func (p *Pipeline) RunID() uuid.UUID {
	return p.runID
}

// Run executes decode, resolve and aggregate. A truncated feed is not an
// error; the result covers whatever was decoded.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.ran {
		return nil, ErrAlreadyRan
	}
	p.ran = true

	res := &Result{RunID: p.runID}

	start := time.Now()
	p.logger.Info("decode phase started", "concurrent", p.cfg.Concurrent)

	var err error
	if p.cfg.Concurrent {
		err = p.decodeConcurrent(ctx)
	} else {
		err = p.decodeSequential(ctx)
	}
	res.Decode = p.decoder.Stats()
	res.References = p.refs.Stats()
	res.Timings.Decode = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	if res.Decode.Truncated {
		p.logger.Warn("feed ended inside a message", "offset", res.Decode.BytesRead)
	}
	p.logger.Info("decode phase complete",
		"bytes", res.Decode.BytesRead,
		"decoded", res.Decode.TotalDecoded(),
		"rejected", res.Decode.TotalRejected(),
		"skipped_bytes", res.Decode.SkippedBytes,
		"references", res.References.References,
		"duration", res.Timings.Decode,
	)

	start = time.Now()
	trades, rstats := resolver.New(p.refs, p.logger).Resolve(p.staged)
	res.Resolve = rstats
	res.Trades = len(trades)
	res.Timings.Resolve = time.Since(start)
	p.staged = resolver.Input{}

	p.logger.Info("resolve phase complete",
		"resolved", rstats.Resolved(),
		"unmatched", rstats.Unmatched,
		"unresolvable", rstats.Unresolvable,
		"duration", res.Timings.Resolve,
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	res.Table = p.agg.Aggregate(trades)
	res.Timings.Aggregate = time.Since(start)

	p.logger.Info("aggregate phase complete",
		"stocks", len(res.Table.Rows),
		"duration", res.Timings.Aggregate,
	)

	return res, nil
}

// stage routes one decoded record to the reference table or a staging
// collection.
func (p *Pipeline) stage(rec model.Record) {
	switch m := rec.(type) {
	case model.AddOrder:
		p.refs.PutOrder(m)
	case model.OrderExecuted:
		p.staged.Executions = append(p.staged.Executions, m)
	case model.OrderExecutedWithPrice:
		p.staged.PricedExecutions = append(p.staged.PricedExecutions, m)
	case model.Trade:
		p.staged.Trades = append(p.staged.Trades, m)
	}
}

func (p *Pipeline) decodeSequential(ctx context.Context) error {
	for n := 0; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rec, err := p.decoder.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		p.stage(rec)
	}
}

func (p *Pipeline) decodeConcurrent(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	buf := NewBuffer[model.Record](p.cfg.BufferSize)

	// Decoder goroutine.
	g.Go(func() error {
		defer buf.Close()
		for n := 0; ; n++ {
			if n%cancelCheckInterval == 0 {
				if err := gctx.Err(); err != nil {
					return err
				}
			}

			rec, err := p.decoder.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			buf.Send(rec)
		}
	})

	// Staging goroutine: the only writer of the reference table.
	g.Go(func() error {
		batch := make([]model.Record, 0, stageBatchSize)
		for {
			var ok bool
			batch, ok = buf.ReceiveBatch(batch[:0], stageBatchSize)
			if !ok {
				return nil
			}
			for _, rec := range batch {
				p.stage(rec)
			}
			if err := gctx.Err(); err != nil {
				return err
			}
		}
	})

	err := g.Wait()

	stats := buf.Stats()
	p.logger.Debug("record buffer drained",
		"records", stats.TotalSent,
		"capacity", stats.Capacity,
		"resizes", stats.Resizes,
	)
	return err
}
