package config

import (
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"prunarr/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Paths.Validate(); err != nil {
		return fmt.Errorf("paths: %w", err)
	}
	if err := c.Radarr.Validate(); err != nil {
		return fmt.Errorf("radarr: %w", err)
	}
	if err := c.Notifications.Validate(); err != nil {
		return fmt.Errorf("notifications: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Validate checks the path section.
func (p *Paths) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.RequestsFile, validation.Required),
		validation.Field(&p.ResultsDir, validation.Required),
		validation.Field(&p.LogDir, validation.Required),
		validation.Field(&p.StateDir, validation.Required),
	)
}

// Validate checks the Radarr connection settings. The API key is not required
// here so that commands that never reach Radarr (config init, history) can
// load the file; RequireAPIKey guards the commands that do.
func (r *Radarr) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.URL, validation.Required, validation.By(httpURL)),
		validation.Field(&r.RequestTimeout, validation.Required, validation.Min(1)),
		validation.Field(&r.RequestsPerSecond, validation.Min(0.0)),
	)
}

// RequireAPIKey reports a configuration error when no Radarr API key is set.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Radarr.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("%w: radarr.api_key is required. Set RADARR_API_KEY env var (or .env) or edit %s (create with 'prunarr config init')", services.ErrConfiguration, defaultPath)
}

// Validate checks the notification section.
func (n *Notifications) Validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.RequestTimeout, validation.Required, validation.Min(1)),
		validation.Field(&n.NtfyTopic, validation.When(n.NtfyTopic != "", validation.By(httpURL))),
	)
}

// Validate checks the logging section.
func (l *Logging) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Format, validation.Required, validation.In("console", "json")),
		validation.Field(&l.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

func httpURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url must use http or https, got %q", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url %q is missing a host", raw)
	}
	return nil
}
