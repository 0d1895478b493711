// Package convert drives the conversion of a CK2 mod: it loads the
// conversion settings, reads the source mod through package ck2 and hands
// the map stages to pluggable collaborators.
package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/modconv/pdx"
)

// Config holds the settings of one conversion.
type Config struct {
	SourceDir   string     `yaml:"source_dir"`
	OutputDir   string     `yaml:"output_dir"`
	ModName     string     `yaml:"mod_name"`
	Destination Dimensions `yaml:"destination"`
	Scale       float64    `yaml:"scale"`
	Offset      Offset     `yaml:"offset"`
	// ToneCurve remaps heightmap gray levels. Empty means DefaultToneCurve.
	ToneCurve      ToneCurve `yaml:"tone_curve"`
	Workers        int       `yaml:"workers"`
	MaxDepth       int       `yaml:"max_depth"`
	CheckModifiers bool      `yaml:"check_modifiers"`

	Logger *slog.Logger `yaml:"-"`
}

// Dimensions is the pixel size of the destination map.
type Dimensions struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Offset places the scaled source map on the destination map.
type Offset struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// defaults fills unset settings. Negative sizes are left for Validate.
func (c *Config) defaults() {
	if c.Destination.Width == 0 {
		c.Destination.Width = 8192
	}
	if c.Destination.Height == 0 {
		c.Destination.Height = 4096
	}
	if c.Scale == 0 {
		c.Scale = 1
	}
	if len(c.ToneCurve) == 0 {
		c.ToneCurve = mustParseToneCurve(DefaultToneCurve)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = pdx.DefaultMaxDepth
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.SourceDir == "" {
		errs = append(errs, errors.New("source_dir is required"))
	}
	if c.Scale < 0 {
		errs = append(errs, fmt.Errorf("scale must be positive, got %g", c.Scale))
	}
	if c.Destination.Width < 0 || c.Destination.Height < 0 {
		errs = append(errs, fmt.Errorf("invalid destination %dx%d", c.Destination.Width, c.Destination.Height))
	}
	return errors.Join(errs...)
}

// FlatName is the mod name as a directory name: lowercase, spaces as
// underscores.
func (c *Config) FlatName() string {
	return strings.ToLower(strings.ReplaceAll(c.ModName, " ", "_"))
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
