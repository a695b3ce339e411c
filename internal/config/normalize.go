package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeActivation()
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeEngine()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeActivation() {
	c.Activation.Endpoint = strings.TrimSpace(c.Activation.Endpoint)
	if c.Activation.Token == "" {
		if value, ok := os.LookupEnv("ONBOARD_ACTIVATION_TOKEN"); ok {
			c.Activation.Token = strings.TrimSpace(value)
		}
	}
	if c.Activation.TimeoutSeconds <= 0 {
		c.Activation.TimeoutSeconds = defaultActivationTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeEngine() {
	if c.Engine.PersistTimeoutSeconds <= 0 {
		c.Engine.PersistTimeoutSeconds = defaultPersistTimeoutSeconds
	}
	if c.Engine.AutosaveTimeoutSeconds <= 0 {
		c.Engine.AutosaveTimeoutSeconds = defaultAutosaveTimeoutSeconds
	}
}
