package main

import (
	"errors"
	"fmt"
	"log/slog"
)

// Config holds all configuration for one merklegate invocation.
type Config struct {
	// InputPath is the address list to commit (CSV, optional header).
	InputPath string

	// OutputPath receives the JSON artifact. Optional when ProofFor is set.
	OutputPath string

	// ProofFor, when set, prints the named address's proof to stdout
	// instead of (or in addition to) writing the artifact.
	ProofFor string

	// CrossCheck re-derives the finished commitment with go-ethereum's
	// primitives before anything is written.
	CrossCheck bool

	// SignKey is an optional hex secp256k1 key; when present the committed
	// root is signed and the attestation embedded in the artifact.
	SignKey string

	// Verbosity controls log output, 0 (silent) to 5 (trace).
	Verbosity int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Verbosity: 3,
	}
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("config: input path must not be empty")
	}
	if c.OutputPath == "" && c.ProofFor == "" {
		return errors.New("config: output path must not be empty")
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("config: invalid verbosity %d (want 0-5)", c.Verbosity)
	}
	return nil
}

// LogLevel maps the numeric verbosity onto a slog level.
func (c *Config) LogLevel() slog.Level {
	switch {
	case c.Verbosity <= 0:
		return slog.LevelError + 4 // above every record; effectively silent
	case c.Verbosity == 1:
		return slog.LevelError
	case c.Verbosity == 2:
		return slog.LevelWarn
	case c.Verbosity == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
