// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultAnkiConnectURL = "http://127.0.0.1:8765"
	DefaultMetricsJob     = "card_submitter"
)

// FlagBindings maps config keys to command-line flag names.
var FlagBindings = map[string]string{
	"ankiconnect.url": "url",
	"logging.level":   "log-level",
	"logging.format":  "log-format",
}

// LoadOptions tunes where configuration comes from.
type LoadOptions struct {
	// ConfigFile is an explicit config path; empty searches ./configs and the working directory.
	ConfigFile string
	// Flags, when set, override config values for the keys in FlagBindings.
	Flags *pflag.FlagSet
}

// Load reads .env, the base config file, the environment-specific overlay and
// the process environment, in increasing order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// ANKICONNECT_URL overrides ankiconnect.url
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || opts.ConfigFile != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if opts.ConfigFile == "" {
		env := os.Getenv("APP_ENVIRONMENT")
		if env == "" {
			env = "development"
		}
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = v.MergeInConfig() // overlay is optional
	}

	if opts.Flags != nil {
		for key, name := range FlagBindings {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "card-submitter")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("ankiconnect.url", DefaultAnkiConnectURL)
	v.SetDefault("ankiconnect.api_key", "")
	v.SetDefault("ankiconnect.timeout", 0)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", DefaultMetricsJob)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "")
}

// loadEnvFile loads .env from the working directory when one is present.
func loadEnvFile() string {
	const path = ".env"
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	if err := godotenv.Load(path); err != nil {
		return ""
	}
	return path
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults fills fields a sparse config file may have blanked out.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "card-submitter"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.AnkiConnect.URL == "" {
		cfg.AnkiConnect.URL = DefaultAnkiConnectURL
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = DefaultMetricsJob
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	u, err := url.Parse(cfg.AnkiConnect.URL)
	if err != nil {
		return fmt.Errorf("ankiconnect.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ankiconnect.url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("ankiconnect.url must include a host")
	}

	if cfg.AnkiConnect.Timeout < 0 {
		return fmt.Errorf("ankiconnect.timeout must not be negative")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console")
	}

	if cfg.Metrics.PushgatewayURL != "" {
		if _, err := url.ParseRequestURI(cfg.Metrics.PushgatewayURL); err != nil {
			return fmt.Errorf("metrics.pushgateway_url is not a valid URL: %w", err)
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
