package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/itch-vwap/internal/vwap"
)

// SessionDateLayout is the layout of session.date.
const SessionDateLayout = "2006-01-02"

// Config is the root configuration for a VWAP run.
type Config struct {
	Session     SessionConfig  `yaml:"session"`
	Input       InputConfig    `yaml:"input"`
	Decoder     DecoderConfig  `yaml:"decoder"`
	Pipeline    PipelineConfig `yaml:"pipeline"`
	Checkpoints []string       `yaml:"checkpoints"`
	Output      OutputConfig   `yaml:"output"`
	Log         LogConfig      `yaml:"log"`
}

// SessionConfig identifies the trading session the feed covers.
type SessionConfig struct {
	Date string `yaml:"date"` // optional, YYYY-MM-DD
	MIC  string `yaml:"mic"`  // exchange calendar
}

// InputConfig describes the feed file.
type InputConfig struct {
	Path        string `yaml:"path"`
	Compression string `yaml:"compression"` // auto, gzip or none
	ReadBuffer  int    `yaml:"read_buffer"`
}

// DecoderConfig holds message filter settings.
type DecoderConfig struct {
	AllowSellTrades bool `yaml:"allow_sell_trades"`
}

// PipelineConfig holds execution mode settings.
type PipelineConfig struct {
	Concurrent bool `yaml:"concurrent"`
	BufferSize int  `yaml:"buffer_size"`
}

// OutputConfig selects and configures the table sink.
type OutputConfig struct {
	Format    string   `yaml:"format"` // csv, sqlite or postgres
	Path      string   `yaml:"path"`
	Precision *int     `yaml:"precision"` // nil means DefaultPrecision
	BatchSize int      `yaml:"batch_size"`
	Database  DBConfig `yaml:"database"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Digits returns the configured VWAP precision.
func (o OutputConfig) Digits() int {
	if o.Precision == nil {
		return DefaultPrecision
	}
	return *o.Precision
}

// SessionDate parses session.date. The zero time is returned when unset.
func (c *Config) SessionDate() (time.Time, error) {
	if c.Session.Date == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(SessionDateLayout, c.Session.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse session.date: %w", err)
	}
	return d, nil
}

// ParsedCheckpoints converts the checkpoint list.
func (c *Config) ParsedCheckpoints() ([]vwap.Checkpoint, error) {
	return vwap.ParseAll(c.Checkpoints)
}

// SlogLevel converts log.level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("parse log.level: %w", err)
	}
	return level, nil
}
