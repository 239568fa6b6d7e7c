package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrSecretInConfig is returned when a config file carries an API secret.
var ErrSecretInConfig = errors.New("API secrets not allowed in config files (use PROSPECTOR_API_SECRET environment variable)")

// flagKeys maps CLI flag names to config keys. Only flags present in the
// flag set passed to LoadConfig are bound.
var flagKeys = map[string]string{
	"host":       "api.host",
	"port":       "api.port",
	"db-url":     "db.url",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// LoadConfig loads configuration using viper.
// CLI flags > environment > config file > defaults precedence.
// flags may be nil.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("api.host", d.API.Host)
	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.request_timeout", d.API.RequestTimeout.String())
	v.SetDefault("api.max_records", d.API.MaxRecords)
	v.SetDefault("filter.cross_entity", d.Filter.CrossEntity)
	v.SetDefault("filter.pipeline_stages", []string{})
	v.SetDefault("import.forward_fill", []string{})
	v.SetDefault("import.max_rows", d.Import.MaxRows)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("db.url", d.DatabaseURL)

	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets must be environment-only per 12-factor principles.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		API: APIConfig{
			Host:           v.GetString("api.host"),
			Port:           v.GetInt("api.port"),
			RequestTimeout: v.GetDuration("api.request_timeout"),
			MaxRecords:     v.GetInt("api.max_records"),
		},
		Filter: FilterConfig{
			CrossEntity:    v.GetBool("filter.cross_entity"),
			PipelineStages: v.GetStringSlice("filter.pipeline_stages"),
		},
		Import: ImportConfig{
			ForwardFill: v.GetStringSlice("import.forward_fill"),
			MaxRows:     v.GetInt("import.max_rows"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		DatabaseURL: v.GetString("db.url"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive limits.
func validateConfig(cfg *Config) error {
	if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.API.Port)
	}
	if cfg.API.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.API.RequestTimeout)
	}
	if cfg.API.MaxRecords <= 0 {
		return fmt.Errorf("max_records must be positive, got %d", cfg.API.MaxRecords)
	}
	if cfg.Import.MaxRows <= 0 {
		return fmt.Errorf("import max_rows must be positive, got %d", cfg.Import.MaxRows)
	}
	switch cfg.Log.Format {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log format must be json or text, got %q", cfg.Log.Format)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("api_secret") || v.InConfig("api.secret") || v.InConfig("api.api_secret") {
		return ErrSecretInConfig
	}
	return nil
}
