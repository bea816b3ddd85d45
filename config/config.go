// Package config loads the runtime configuration consumed by the engine:
// execution timeout, output cap, interpreter, and extra denylist tokens.
// Sources are layered: built-in defaults, then a twi.yaml file, then
// TWI_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the configuration surface consumed, not owned, by the core.
type Config struct {
	// TimeoutSeconds bounds one execution. Per-call overrides win.
	TimeoutSeconds int `koanf:"timeout"`
	// OutputCap limits each captured stream, in bytes.
	OutputCap int `koanf:"output_cap"`
	// Interpreter is the target-language interpreter binary.
	Interpreter string `koanf:"interpreter"`
	// Deny lists extra denylist tokens on top of the built-in set.
	Deny []string `koanf:"deny"`
}

// Timeout returns the configured timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration:
// 4 second timeout, 20,000 byte cap, python3.
func Default() *Config {
	return &Config{
		TimeoutSeconds: 4,
		OutputCap:      20000,
		Interpreter:    "python3",
	}
}

// findConfigFile picks the config file to use.
// Priority: explicit path > twi.yaml > twi.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"twi.yaml", "twi.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds a Config from defaults, an optional YAML file, and the
// environment. cfgFile may be empty, in which case twi.yaml/twi.yml in the
// working directory is used when present.
func Load(cfgFile string) (*Config, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"timeout":     def.TimeoutSeconds,
		"output_cap":  def.OutputCap,
		"interpreter": def.Interpreter,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if used := findConfigFile(cfgFile); used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", used, err)
		}
	}

	// TWI_OUTPUT_CAP → output_cap
	if err := k.Load(env.Provider("TWI_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TWI_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %d", cfg.TimeoutSeconds)
	}
	if cfg.OutputCap <= 0 {
		return nil, fmt.Errorf("output_cap must be positive, got %d", cfg.OutputCap)
	}
	if cfg.Interpreter == "" {
		return nil, fmt.Errorf("interpreter must not be empty")
	}
	return &cfg, nil
}
