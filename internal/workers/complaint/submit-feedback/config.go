package submitfeedback

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`

	// RetrainAccuracy is the reviewed accuracy below which the job output
	// recommends retraining.
	RetrainAccuracy float64 `mapstructure:"retrain_accuracy"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		MaxJobsActive:   5,
		Timeout:         10 * time.Second,
		RetrainAccuracy: 0.8,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.RetrainAccuracy < 0 || c.RetrainAccuracy > 1 {
		return fmt.Errorf("retrain_accuracy must be between 0 and 1")
	}
	return nil
}
