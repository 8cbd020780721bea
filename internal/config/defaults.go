package config

import "github.com/rickgao/itch-vwap/internal/vwap"

// Default values for optional configuration fields.
const (
	DefaultMIC         = "xnas"
	DefaultCompression = "auto"
	DefaultReadBuffer  = 1 << 20
	DefaultBufferSize  = 65536
	DefaultFormat      = "csv"
	DefaultOutputPath  = "NASDAQ_VWAP.csv"
	DefaultPrecision   = 6
	DefaultBatchSize   = 1000
	DefaultDBPort      = 5432
	DefaultDBSSLMode   = "prefer"
	DefaultMaxConns    = 4
	DefaultMinConns    = 1
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Default returns a config with every default applied and no input path.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Session.MIC == "" {
		c.Session.MIC = DefaultMIC
	}

	if c.Input.Compression == "" {
		c.Input.Compression = DefaultCompression
	}
	if c.Input.ReadBuffer == 0 {
		c.Input.ReadBuffer = DefaultReadBuffer
	}

	if c.Pipeline.BufferSize == 0 {
		c.Pipeline.BufferSize = DefaultBufferSize
	}

	if len(c.Checkpoints) == 0 {
		for _, cp := range vwap.DefaultCheckpoints() {
			c.Checkpoints = append(c.Checkpoints, cp.String())
		}
	}

	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Output.Path == "" && c.Output.Format != "postgres" {
		c.Output.Path = DefaultOutputPath
	}
	if c.Output.Precision == nil {
		p := DefaultPrecision
		c.Output.Precision = &p
	}
	if c.Output.BatchSize == 0 {
		c.Output.BatchSize = DefaultBatchSize
	}
	applyDBDefaults(&c.Output.Database)

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
