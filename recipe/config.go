// Package recipe loads recipe documents and executes them over the batch
// or streaming pipeline.
package recipe

import (
	"github.com/kbukum/etlkit/config"
	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/validation"
)

// Step actions.
const (
	ActionTransform = "transform"
	ActionFilter    = "filter"
)

// Config is a recipe document.
type Config struct {
	Name     string          `yaml:"name" mapstructure:"name" validate:"required"`
	Source   Source          `yaml:"source" mapstructure:"source"`
	Steps    []Step          `yaml:"steps" mapstructure:"steps" validate:"min=1,dive"`
	Output   Output          `yaml:"output" mapstructure:"output"`
	Settings config.Settings `yaml:"settings" mapstructure:"settings"`
}

// Source lists the files to extract.
type Source struct {
	Format string   `yaml:"format" mapstructure:"format" validate:"required,oneof=csv json sqlite"`
	Paths  []string `yaml:"path" mapstructure:"path" validate:"min=1,dive,required"`
}

// Step names one registry operation. The first step is always a record
// transform; its action is not consulted.
type Step struct {
	Action string `yaml:"action" mapstructure:"action"`
	Value  string `yaml:"value" mapstructure:"value" validate:"required"`
}

// Output names where results are written.
type Output struct {
	Format string `yaml:"format" mapstructure:"format" validate:"required,oneof=csv json sqlite"`
	Path   string `yaml:"path" mapstructure:"path" validate:"required"`
}

// Load reads the recipe at path, applies defaults and validates it.
// Environment variables prefixed with ETL_ override document values.
func Load(path string, opts ...config.LoaderOption) (Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, opts...); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued settings.
func (c *Config) ApplyDefaults() {
	c.Settings.ApplyDefaults()
}

// Validate checks the document structure and the settings ranges.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.Settings.Validate(); err != nil {
		return errors.InvalidConfig("settings", err.Error()).WithCause(err)
	}
	return nil
}
