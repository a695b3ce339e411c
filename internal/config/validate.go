package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateActivation(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.InProgressDamping <= 0 || c.Scoring.InProgressDamping > 1 {
		return errors.New("scoring.in_progress_damping must be in (0, 1]")
	}
	if c.Scoring.SkipCredit < 0 || c.Scoring.SkipCredit > 1 {
		return errors.New("scoring.skip_credit must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.SkipThreshold < 0 {
		return errors.New("notifications.skip_threshold must not be negative")
	}
	return nil
}

func (c *Config) validateActivation() error {
	endpoint := c.Activation.Endpoint
	if endpoint == "" {
		return nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return fmt.Errorf("activation.endpoint %q must be an http(s) URL", endpoint)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
