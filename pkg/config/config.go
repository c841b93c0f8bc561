// Package config loads and validates search run configuration from YAML.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/pge-go/pkg/errors"
)

// SearchConfig holds the knobs of one search run.
type SearchConfig struct {
	// PopulationSize is the number of candidates per generation.
	PopulationSize int `yaml:"population_size" validate:"gte=1"`

	// LearningFactor is the blend rate alpha applied when folding elite
	// statistics into the model.
	LearningFactor float64 `yaml:"learning_factor" validate:"gt=0,lte=1"`

	// SelectionFraction is the elite fraction of each generation.
	SelectionFraction float64 `yaml:"selection_fraction" validate:"gt=0,lte=1"`

	// Maximize sets the optimization direction.
	Maximize bool `yaml:"maximize"`

	// RandomSeed fixes the run's random stream; 0 means time-based.
	RandomSeed int64 `yaml:"random_seed" validate:"gte=0"`

	// MaxGoroutines bounds parallel candidate construction and evaluation.
	MaxGoroutines int `yaml:"max_goroutines" validate:"gte=1"`

	// LogLevel is one of DEBUG, INFO, WARN, ERROR, FATAL.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`
}

// Default returns the configuration used when no file is given.
func Default() SearchConfig {
	return SearchConfig{
		PopulationSize:    100,
		LearningFactor:    0.05,
		SelectionFraction: 0.2,
		Maximize:          true,
		MaxGoroutines:     1,
		LogLevel:          "INFO",
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (SearchConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path},
		)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "malformed config file"),
			errors.Fields{"path": path},
		)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c SearchConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			fields := errors.Fields{}
			for _, fe := range errs {
				fields[fe.Field()] = fe.Tag()
			}
			return errors.WithFields(
				errors.New(errors.ValidationFailed, "invalid search configuration"),
				fields,
			)
		}
		return errors.Wrap(err, errors.ValidationFailed, "invalid search configuration")
	}
	return nil
}
