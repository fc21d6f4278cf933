package classifycomplaint

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`

	// ReviewConfidence flags predictions whose category confidence falls
	// below it for human review. Zero disables the flag.
	ReviewConfidence float64 `mapstructure:"review_confidence"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		MaxJobsActive:    10,
		Timeout:          15 * time.Second,
		ReviewConfidence: 0.5,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.ReviewConfidence < 0 || c.ReviewConfidence > 1 {
		return fmt.Errorf("review_confidence must be between 0 and 1")
	}
	return nil
}
