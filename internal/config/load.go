// internal/config/load.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a config file. Files ending in .toml are decoded as TOML,
// everything else as YAML. Load does not validate or apply defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &c); err != nil {
			return nil, fmt.Errorf("parse config (toml): %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config (yaml): %w", err)
		}
	}
	return &c, nil
}

// Default returns a fully normalized config for the stock board:
// SPI bus 1 device 1 at 500 kHz, 30.72 MHz reference, 0.1 ppm.
func Default() *Config {
	c := &Config{}
	Normalize(c)
	return c
}
