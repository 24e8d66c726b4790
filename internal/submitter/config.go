package submitter

import (
	"fmt"
	"net/url"
	"time"

	"card-submitter/internal/common/ankiconnect"
	"card-submitter/internal/common/config"
)

type Config struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig has no timeout: a call may block for as long as the endpoint takes.
func DefaultConfig() *Config {
	return &Config{
		URL: ankiconnect.DefaultURL,
	}
}

// ConfigFromApp derives the submitter settings from the application config.
func ConfigFromApp(app *config.Config) *Config {
	cfg := DefaultConfig()
	if app == nil {
		return cfg
	}
	if app.AnkiConnect.URL != "" {
		cfg.URL = app.AnkiConnect.URL
	}
	cfg.APIKey = app.AnkiConnect.APIKey
	cfg.Timeout = app.AnkiConnect.RequestTimeout()
	return cfg
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if _, err := url.ParseRequestURI(c.URL); err != nil {
		return fmt.Errorf("url is invalid: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
