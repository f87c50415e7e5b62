// Package config handles collidergen configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/contour"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatText = "text"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all collidergen settings.
type Config struct {
	Generate GenerateConfig `yaml:"generate"`
	Data     DataConfig     `yaml:"data"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GenerateConfig selects what gets synthesized.
type GenerateConfig struct {
	Kind    collider.Kind `yaml:"kind"`
	Frame   contour.Frame `yaml:"frame"`
	Multi   bool          `yaml:"multi"`   // one collider per connected region
	Workers int           `yaml:"workers"` // 0 = GOMAXPROCS
}

// DataConfig holds sprite source locations.
type DataConfig struct {
	GRFPaths   []string `yaml:"grf_paths"`   // GRF archives, later entries win
	SearchDirs []string `yaml:"search_dirs"` // plain directories searched before archives
	MagentaKey bool     `yaml:"magenta_key"` // key out magenta in BMP/JPEG sources
}

// OutputConfig controls where results go.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // empty = stdout
	Format string `yaml:"format"` // yaml or text
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Generate: GenerateConfig{
			Kind:    collider.KindConvexHull,
			Frame:   contour.Translated,
			Multi:   false,
			Workers: 0,
		},
		Data: DataConfig{
			GRFPaths:   nil,
			SearchDirs: []string{"."},
			MagentaKey: true,
		},
		Output: OutputConfig{
			Dir:    "",
			Format: FormatYAML,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values the YAML decoder cannot.
func (c *Config) Validate() error {
	if c.Generate.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Generate.Workers)
	}
	switch c.Output.Format {
	case FormatYAML, FormatText:
	default:
		return fmt.Errorf("%w: output format %q", ErrInvalidConfig, c.Output.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}
