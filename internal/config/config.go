// Package config loads the tunables that size a single loxcraft run: how
// large the VM's global table and value stack are, how deep a call chain
// may recurse, and how many frames its pool pre-reserves. The core package
// lang/machine takes these as plain constructor arguments and never reads
// the environment itself; only the CLI shell (cmd/loxcraft and
// internal/maincmd) depends on this package, matching the teacher's
// stdio-owns-configuration split.
package config

import "github.com/caarlos0/env/v6"

// Config holds the VM's tunable limits, loaded from LOXCRAFT_* environment
// variables with defaults that satisfy spec.md §4.9's GLOBALS_SIZE >= 65536.
type Config struct {
	GlobalsSize   int `env:"LOXCRAFT_GLOBALS_SIZE" envDefault:"65536"`
	StackSize     int `env:"LOXCRAFT_STACK_SIZE" envDefault:"8192"`
	MaxCallDepth  int `env:"LOXCRAFT_MAX_CALL_DEPTH" envDefault:"1024"`
	FramePoolSize int `env:"LOXCRAFT_FRAME_POOL_SIZE" envDefault:"1024"`
}

// Load reads Config from the environment, filling in defaults for anything
// unset.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
