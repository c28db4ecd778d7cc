// Package config handles lemurs.toml command line configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/lemurs/emulator"
)

const (
	RANDOM_LENGTH = 256 // Default random program length in bytes.
)

// Config represents a lemurs.toml configuration.
type Config struct {
	Machine Machine `toml:"machine"`
	Random  Random  `toml:"random"`
	Output  Output  `toml:"output"`
}

// Machine configures the emulator limits.
type Machine struct {
	StepsPerTick int `toml:"steps-per-tick"`
	StepLimit    int `toml:"step-limit"`
	OutputLimit  int `toml:"output-limit"`
}

// Random configures random program generation.
type Random struct {
	Length int    `toml:"length"`
	Seed   uint64 `toml:"seed"` // Zero for a time based seed.
}

// Output configures where machine output goes.
type Output struct {
	Path    string `toml:"path"`    // Output file, or "-" for stdout.
	Pipe    string `toml:"pipe"`    // Command to stream output into.
	Preview int    `toml:"preview"` // Preview length; zero to stream.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Machine: Machine{
			StepsPerTick: emulator.STEPS_PER_TICK,
		},
		Random: Random{
			Length: RANDOM_LENGTH,
		},
		Output: Output{
			Path: "-",
		},
	}
}

// Parse overlays TOML text onto the defaults.
func Parse(data string) (*Config, error) {
	c := Default()

	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, err
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	if c.Machine.StepsPerTick <= 0 {
		return nil, fmt.Errorf("machine.steps-per-tick must be positive")
	}
	if c.Random.Length <= 0 {
		return nil, fmt.Errorf("random.length must be positive")
	}

	return c, nil
}

// Load parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	return c, nil
}

// PipeCommand splits the pipe command into words, or returns nil if there
// is no pipe command.
func (c *Config) PipeCommand() []string {
	words := strings.Fields(c.Output.Pipe)
	if len(words) == 0 {
		return nil
	}

	return words
}
