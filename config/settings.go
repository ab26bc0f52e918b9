package config

import (
	"fmt"
	"runtime"

	"github.com/kbukum/etlkit/logger"
)

// Unknown step policies.
const (
	UnknownStepsPassthrough = "passthrough"
	UnknownStepsFail        = "fail"
)

// DefaultChunkSize is the streaming chunk size when none is configured.
const DefaultChunkSize = 1000

// Settings holds runtime tuning shared by every recipe.
type Settings struct {
	// ChunkSize bounds the records held per streaming chunk.
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size"`

	// Workers is the batch fan-out width. Defaults to GOMAXPROCS.
	Workers int `yaml:"workers" mapstructure:"workers"`

	// UnknownSteps decides what happens to a step after the first whose
	// name does not resolve: passthrough (logged and skipped) or fail.
	UnknownSteps string `yaml:"unknown_steps" mapstructure:"unknown_steps"`

	// StopOnParseError ends a streamed file when the first record of a
	// chunk fails to parse.
	StopOnParseError bool `yaml:"stop_on_parse_error" mapstructure:"stop_on_parse_error"`

	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (s *Settings) ApplyDefaults() {
	if s.ChunkSize == 0 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.Workers == 0 {
		s.Workers = runtime.GOMAXPROCS(0)
	}
	if s.UnknownSteps == "" {
		s.UnknownSteps = UnknownStepsPassthrough
	}
	s.Logging.ApplyDefaults()
}

// Validate checks ranges and enumerations.
func (s *Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("settings.chunk_size must be > 0 (got: %d)", s.ChunkSize)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("settings.workers must be > 0 (got: %d)", s.Workers)
	}
	switch s.UnknownSteps {
	case UnknownStepsPassthrough, UnknownStepsFail:
	default:
		return fmt.Errorf("settings.unknown_steps must be one of [passthrough, fail] (got: %s)", s.UnknownSteps)
	}
	if err := s.Logging.Validate(); err != nil {
		return fmt.Errorf("settings.logging: %w", err)
	}
	return nil
}
