package config

import (
	"errors"
	"fmt"
)

const (
	maxSuggestionCount = 5
	maxSampleSize      = 5
)

// Validate ensures the configuration is usable. API keys are not required
// here: list management works offline, and the clients report missing keys
// when a lookup or suggestion request is attempted.
func (c *Config) Validate() error {
	if err := c.validateOMDb(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateSuggestions(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOMDb() error {
	if c.OMDb.TimeoutSeconds <= 0 {
		return errors.New("omdb.timeout_seconds must be positive")
	}
	if c.OMDb.RequestsPerSecond <= 0 {
		return errors.New("omdb.requests_per_second must be positive")
	}
	if c.OMDb.Burst <= 0 {
		return errors.New("omdb.burst must be positive")
	}
	if c.OMDb.CacheTTLSeconds < 0 {
		return errors.New("omdb.cache_ttl_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.RetryAttempts <= 0 {
		return errors.New("llm.retry_attempts must be at least 1")
	}
	return nil
}

func (c *Config) validateSuggestions() error {
	s := c.Suggestions
	if s.Count <= 0 || s.Count > maxSuggestionCount {
		return fmt.Errorf("suggestions.count must be between 1 and %d", maxSuggestionCount)
	}
	if s.SampleSize <= 0 || s.SampleSize > maxSampleSize {
		return fmt.Errorf("suggestions.sample_size must be between 1 and %d", maxSampleSize)
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return errors.New("suggestions.temperature must be between 0 and 2")
	}
	if s.ReplaceTemperature < 0 || s.ReplaceTemperature > 2 {
		return errors.New("suggestions.replace_temperature must be between 0 and 2")
	}
	if s.ReplaceTemperature <= s.Temperature {
		return errors.New("suggestions.replace_temperature must be greater than suggestions.temperature")
	}
	if s.Concurrency <= 0 {
		return errors.New("suggestions.concurrency must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
