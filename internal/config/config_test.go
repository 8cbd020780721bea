package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
session:
  date: "2019-01-30"
input:
  path: 01302019.NASDAQ_ITCH50.gz
  compression: gzip
decoder:
  allow_sell_trades: true
pipeline:
  concurrent: true
checkpoints: ["09:30", "12:00"]
output:
  format: sqlite
  path: vwap.db
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Input.Path != "01302019.NASDAQ_ITCH50.gz" {
		t.Errorf("Input.Path = %q, want %q", cfg.Input.Path, "01302019.NASDAQ_ITCH50.gz")
	}
	if cfg.Input.Compression != "gzip" {
		t.Errorf("Input.Compression = %q, want %q", cfg.Input.Compression, "gzip")
	}
	if !cfg.Decoder.AllowSellTrades {
		t.Error("Decoder.AllowSellTrades = false, want true")
	}
	if !cfg.Pipeline.Concurrent {
		t.Error("Pipeline.Concurrent = false, want true")
	}
	if len(cfg.Checkpoints) != 2 || cfg.Checkpoints[1] != "12:00" {
		t.Errorf("Checkpoints = %v, want [09:30 12:00]", cfg.Checkpoints)
	}
	if cfg.Output.Format != "sqlite" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "sqlite")
	}

	date, err := cfg.SessionDate()
	if err != nil {
		t.Fatalf("SessionDate() error = %v", err)
	}
	if want := time.Date(2019, 1, 30, 0, 0, 0, 0, time.UTC); !date.Equal(want) {
		t.Errorf("SessionDate() = %v, want %v", date, want)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")
	t.Setenv("TEST_FEED", "/data/feed.gz")

	yaml := `
input:
  path: ${TEST_FEED}
output:
  format: postgres
  database:
    host: localhost
    name: vwap
    user: vwap
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Output.Database.Password != "secret123" {
		t.Errorf("Output.Database.Password = %q, want %q", cfg.Output.Database.Password, "secret123")
	}
	if cfg.Input.Path != "/data/feed.gz" {
		t.Errorf("Input.Path = %q, want %q", cfg.Input.Path, "/data/feed.gz")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil, want error")
	}

	path := writeTempFile(t, "input: [unclosed")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse config yaml") {
		t.Errorf("Load(bad yaml) error = %v, want parse config yaml error", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "input:\n  path: feed.gz\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Session.MIC != DefaultMIC {
		t.Errorf("Session.MIC = %q, want default %q", cfg.Session.MIC, DefaultMIC)
	}
	if cfg.Input.Compression != DefaultCompression {
		t.Errorf("Input.Compression = %q, want default %q", cfg.Input.Compression, DefaultCompression)
	}
	if cfg.Input.ReadBuffer != DefaultReadBuffer {
		t.Errorf("Input.ReadBuffer = %d, want default %d", cfg.Input.ReadBuffer, DefaultReadBuffer)
	}
	if cfg.Output.Format != DefaultFormat {
		t.Errorf("Output.Format = %q, want default %q", cfg.Output.Format, DefaultFormat)
	}
	if cfg.Output.Path != DefaultOutputPath {
		t.Errorf("Output.Path = %q, want default %q", cfg.Output.Path, DefaultOutputPath)
	}
	if cfg.Output.Digits() != DefaultPrecision {
		t.Errorf("Output.Digits() = %d, want default %d", cfg.Output.Digits(), DefaultPrecision)
	}
	if cfg.Output.Database.Port != DefaultDBPort {
		t.Errorf("Output.Database.Port = %d, want default %d", cfg.Output.Database.Port, DefaultDBPort)
	}

	cps, err := cfg.ParsedCheckpoints()
	if err != nil {
		t.Fatalf("ParsedCheckpoints() error = %v", err)
	}
	if len(cps) != 8 {
		t.Errorf("len(checkpoints) = %d, want 8", len(cps))
	}
	if cfg.Checkpoints[0] != "09:30" || cfg.Checkpoints[7] != "16:00" {
		t.Errorf("Checkpoints = %v, want 09:30 through 16:00", cfg.Checkpoints)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestLoadWithDefaults_ZeroPrecision(t *testing.T) {
	path := writeTempFile(t, "input:\n  path: feed.gz\noutput:\n  precision: 0\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if got := cfg.Output.Digits(); got != 0 {
		t.Errorf("Output.Digits() = %d, want 0", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, "output:\n  format: csv\n")

	_, err := LoadAndValidate(path)
	if err == nil || err.Error() != "validate config: input.path is required" {
		t.Errorf("LoadAndValidate() error = %v, want input.path is required", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Input.Path = "feed.gz"
		return cfg
	}
	postgres := DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 4, MinConns: 1}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			modify:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing input path",
			modify:  func(c *Config) { c.Input.Path = "" },
			wantErr: "input.path is required",
		},
		{
			name:    "bad compression",
			modify:  func(c *Config) { c.Input.Compression = "zstd" },
			wantErr: `input.compression "zstd" must be auto, gzip or none`,
		},
		{
			name:    "bad session date",
			modify:  func(c *Config) { c.Session.Date = "30/01/2019" },
			wantErr: "parse session.date",
		},
		{
			name:    "unsorted checkpoints",
			modify:  func(c *Config) { c.Checkpoints = []string{"10:00", "09:30"} },
			wantErr: "checkpoints:",
		},
		{
			name:    "bad checkpoint",
			modify:  func(c *Config) { c.Checkpoints = []string{"9.30"} },
			wantErr: "checkpoints:",
		},
		{
			name: "negative precision",
			modify: func(c *Config) {
				p := -1
				c.Output.Precision = &p
			},
			wantErr: "output.precision must be >= 0",
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Output.Format = "parquet" },
			wantErr: `output.format "parquet" must be csv, sqlite or postgres`,
		},
		{
			name: "sqlite on stdout",
			modify: func(c *Config) {
				c.Output.Format = "sqlite"
				c.Output.Path = "-"
			},
			wantErr: "output.path cannot be stdout for sqlite",
		},
		{
			name:    "postgres missing host",
			modify:  func(c *Config) { c.Output.Format = "postgres" },
			wantErr: "output.database.host is required",
		},
		{
			name: "postgres min_conns exceeds max_conns",
			modify: func(c *Config) {
				c.Output.Format = "postgres"
				c.Output.Database = postgres
				c.Output.Database.MinConns = 10
			},
			wantErr: "output.database.min_conns (10) cannot exceed max_conns (4)",
		},
		{
			name: "postgres valid",
			modify: func(c *Config) {
				c.Output.Format = "postgres"
				c.Output.Database = postgres
			},
			wantErr: "",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "parse log.level",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: `log.format "xml" must be text or json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if !strings.HasPrefix(err.Error(), tt.wantErr) {
					t.Errorf("Validate() error = %q, want prefix %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LogConfig{Level: tt.in}.SlogLevel()
			if err != nil {
				t.Fatalf("SlogLevel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
