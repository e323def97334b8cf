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
	c.normalizeRadarr()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.RequestsFile) == "" {
		c.Paths.RequestsFile = defaultRequestsFile
	}
	if c.Paths.RequestsFile, err = expandPath(c.Paths.RequestsFile); err != nil {
		return fmt.Errorf("paths.requests_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		c.Paths.ResultsDir = defaultResultsDir
	}
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRadarr() {
	if strings.TrimSpace(c.Radarr.APIKey) == "" {
		if value, ok := os.LookupEnv("RADARR_API_KEY"); ok {
			c.Radarr.APIKey = value
		}
	}
	c.Radarr.APIKey = strings.TrimSpace(c.Radarr.APIKey)
	if value, ok := os.LookupEnv("RADARR_URL"); ok && strings.TrimSpace(value) != "" {
		c.Radarr.URL = value
	}
	c.Radarr.URL = strings.TrimRight(strings.TrimSpace(c.Radarr.URL), "/")
	if c.Radarr.URL == "" {
		c.Radarr.URL = defaultRadarrURL
	}
	if c.Radarr.RequestTimeout <= 0 {
		c.Radarr.RequestTimeout = defaultRadarrRequestTimeout
	}
	if c.Radarr.RequestsPerSecond < 0 {
		c.Radarr.RequestsPerSecond = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("PRUNARR_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
