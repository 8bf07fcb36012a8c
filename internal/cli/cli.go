// Package cli formats relite command output: colored diagnostics for
// terminals, plain text for pipes and CI.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// OutputMode determines how output is formatted.
type OutputMode int

const (
	// ModeTTY enables colored output for interactive terminals.
	ModeTTY OutputMode = iota
	// ModePlain outputs plain text without colors.
	ModePlain
)

// Config holds CLI output configuration.
type Config struct {
	Mode   OutputMode
	Writer io.Writer
}

// DefaultConfig returns the auto-detected configuration.
// Rules:
//   - If stdout is TTY and NO_COLOR not set -> ModeTTY
//   - If stdout is not TTY, NO_COLOR is set or TERM=dumb -> ModePlain
func DefaultConfig() *Config {
	mode := ModePlain

	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		mode = ModeTTY
	}

	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		mode = ModePlain
	}

	return &Config{
		Mode:   mode,
		Writer: os.Stdout,
	}
}

// NewConfigWithMode creates a config with a specific output mode.
func NewConfigWithMode(mode OutputMode) *Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	return cfg
}

// IsTTY returns true if running in interactive terminal mode.
func (c *Config) IsTTY() bool {
	return c.Mode == ModeTTY
}

// Global default config, initialized lazily.
var defaultCfg *Config

// Default returns the global default configuration.
func Default() *Config {
	if defaultCfg == nil {
		defaultCfg = DefaultConfig()
	}
	return defaultCfg
}

// SetDefault sets the global default configuration.
// Used for testing or when --no-color is passed.
func SetDefault(cfg *Config) {
	defaultCfg = cfg
}

// EnableColors returns true if colors should be used.
func EnableColors() bool {
	return Default().IsTTY()
}
