// Command vwap computes checkpointed VWAP per instrument from an ITCH 5.0
// feed file and writes the table to CSV, SQLite or PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/itch-vwap/internal/calendar"
	"github.com/rickgao/itch-vwap/internal/config"
	"github.com/rickgao/itch-vwap/internal/cursor"
	"github.com/rickgao/itch-vwap/internal/itch"
	"github.com/rickgao/itch-vwap/internal/pipeline"
	"github.com/rickgao/itch-vwap/internal/version"
	"github.com/rickgao/itch-vwap/internal/writer"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	input := flag.String("input", "", "feed file (overrides input.path)")
	output := flag.String("output", "", "output path, - for stdout (overrides output.path)")
	format := flag.String("format", "", "csv, sqlite or postgres (overrides output.format)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(*configPath, *input, *output, *format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vwap: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vwap: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	logger.Info("starting vwap",
		"version", version.Version,
		"commit", version.Commit,
		"input", cfg.Input.Path,
		"format", cfg.Output.Format,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("vwap failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional config file, applies flag overrides, then
// defaults, then validates.
func loadConfig(path, input, output, format string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if input != "" {
		cfg.Input.Path = input
	}
	if output != "" {
		cfg.Output.Path = output
	}
	if format != "" {
		cfg.Output.Format = format
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	start := time.Now()

	sessionDate, err := cfg.SessionDate()
	if err != nil {
		return err
	}
	session := calendar.New(cfg.Session.MIC, logger)
	if !sessionDate.IsZero() && !session.IsTradingDay(sessionDate) {
		logger.Warn("session date is not a trading day",
			"date", cfg.Session.Date,
			"mic", session.MIC(),
		)
	}

	checkpoints, err := cfg.ParsedCheckpoints()
	if err != nil {
		return fmt.Errorf("parse checkpoints: %w", err)
	}

	src, err := cursor.Open(cfg.Input.Path, cursor.Compression(cfg.Input.Compression))
	if err != nil {
		return err
	}
	defer src.Close()

	logger.Info("opened feed", "path", cfg.Input.Path, "gzip", src.Compressed())

	p, err := pipeline.New(pipeline.Config{
		Filter:      itch.Filter{AllowSellTrades: cfg.Decoder.AllowSellTrades},
		Checkpoints: checkpoints,
		ReadBuffer:  cfg.Input.ReadBuffer,
		Concurrent:  cfg.Pipeline.Concurrent,
		BufferSize:  cfg.Pipeline.BufferSize,
		SizeHint:    1 << 20,
	}, src, logger)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	res, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	sink, err := writer.Open(ctx, cfg.Output, logger)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}

	info := writer.RunInfo{ID: res.RunID, SessionDate: sessionDate, Session: session}
	if err := sink.Write(ctx, info, res.Table); err != nil {
		sink.Close()
		return fmt.Errorf("write table: %w", err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("close sink: %w", err)
	}

	logSummary(logger, res, time.Since(start))
	return nil
}

func logSummary(logger *slog.Logger, res *pipeline.Result, elapsed time.Duration) {
	attrs := []any{
		"run_id", res.RunID.String(),
		"stocks", len(res.Table.Rows),
		"trades", res.Trades,
		"bytes", res.Decode.BytesRead,
		"truncated", res.Decode.Truncated,
		"decode", res.Timings.Decode,
		"resolve", res.Timings.Resolve,
		"aggregate", res.Timings.Aggregate,
		"elapsed", elapsed,
	}
	for kind, n := range res.Decode.Decoded {
		attrs = append(attrs, "decoded_"+kind.String(), n)
	}
	for reason, n := range res.Decode.Rejected {
		attrs = append(attrs, "rejected_"+string(reason), n)
	}
	logger.Info("vwap complete", attrs...)
}
