// Package config handles shapebake configuration loading and management.
package config

import (
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-shapebake/internal/bake"
)

// Config holds all tool settings.
type Config struct {
	Bake    BakeConfig    `yaml:"bake"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// BakeConfig holds shape naming settings.
type BakeConfig struct {
	ReservedPrefix string `yaml:"reserved_prefix"` // shapes never baked
	BakedPrefix    string `yaml:"baked_prefix"`    // prefix of emitted shapes
}

// OutputConfig holds where baked documents go and where referenced files
// are looked up.
type OutputConfig struct {
	Suffix      string   `yaml:"suffix"` // inserted before the extension
	Roots       []string `yaml:"roots"`  // extra asset search roots
	ShowWeights bool     `yaml:"show_weights"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Bake: BakeConfig{
			ReservedPrefix: bake.DefaultReservedPrefix,
			BakedPrefix:    bake.DefaultBakedPrefix,
		},
		Output: OutputConfig{
			Suffix:      ".baked",
			ShowWeights: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Naming returns the shape naming rules for a bake pass.
func (c *Config) Naming() bake.Naming {
	return bake.Naming{
		ReservedPrefix: c.Bake.ReservedPrefix,
		BakedPrefix:    c.Bake.BakedPrefix,
	}
}

// Path returns where the baked copy of input is written:
// "avatar.yaml" becomes "avatar.baked.yaml".
func (o OutputConfig) Path(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + o.Suffix + ext
}
