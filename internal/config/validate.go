package config

import (
	"errors"
	"fmt"

	"github.com/rickgao/itch-vwap/internal/cursor"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if _, err := c.SessionDate(); err != nil {
		return err
	}
	if c.Session.MIC == "" {
		return errors.New("session.mic is required")
	}

	if c.Input.Path == "" {
		return errors.New("input.path is required")
	}
	switch cursor.Compression(c.Input.Compression) {
	case cursor.CompressionAuto, cursor.CompressionGzip, cursor.CompressionNone:
	default:
		return fmt.Errorf("input.compression %q must be auto, gzip or none", c.Input.Compression)
	}
	if c.Input.ReadBuffer < 1 {
		return errors.New("input.read_buffer must be >= 1")
	}

	if c.Pipeline.BufferSize < 1 {
		return errors.New("pipeline.buffer_size must be >= 1")
	}

	if _, err := c.ParsedCheckpoints(); err != nil {
		return fmt.Errorf("checkpoints: %w", err)
	}

	if err := c.Output.validate(); err != nil {
		return err
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}

func (o *OutputConfig) validate() error {
	if o.Digits() < 0 {
		return errors.New("output.precision must be >= 0")
	}
	if o.BatchSize < 1 {
		return errors.New("output.batch_size must be >= 1")
	}

	switch o.Format {
	case "csv", "sqlite":
		if o.Path == "" {
			return errors.New("output.path is required")
		}
		if o.Format == "sqlite" && o.Path == "-" {
			return errors.New("output.path cannot be stdout for sqlite")
		}
		return nil
	case "postgres":
		return o.Database.validate("output.database")
	default:
		return fmt.Errorf("output.format %q must be csv, sqlite or postgres", o.Format)
	}
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
