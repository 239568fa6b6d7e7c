// Package config provides configuration management for prospector services.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the full prospector configuration.
type Config struct {
	API    APIConfig
	Filter FilterConfig
	Import ImportConfig
	Log    LogConfig
	// DatabaseURL is sqlite://path or postgres://...
	DatabaseURL string
}

// APIConfig holds configuration for the gRPC filter API.
type APIConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	// MaxRecords caps the leads plus companies loaded for one filtering pass.
	MaxRecords int
}

// FilterConfig tunes filtering and the field catalog.
type FilterConfig struct {
	CrossEntity    bool
	PipelineStages []string
}

// ImportConfig tunes spreadsheet import.
type ImportConfig struct {
	// ForwardFill names columns whose blank cells repeat the value above.
	ForwardFill []string
	MaxRows     int
}

// LogConfig selects level and encoding of the global logger.
type LogConfig struct {
	Level  string
	Format string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Host:           "0.0.0.0",
			Port:           50061,
			RequestTimeout: 30 * time.Second,
			MaxRecords:     50000,
		},
		Filter: FilterConfig{
			CrossEntity: true,
		},
		Import: ImportConfig{
			MaxRows: 100000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		DatabaseURL: "sqlite://prospector.db",
	}
}

// Address returns host:port of the API listener.
func (c APIConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APISecrets extracts API key secrets from environment variables.
// Supports PROSPECTOR_API_SECRET (single) and PROSPECTOR_API_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes.
// Secret IDs are UUIDv7 (32 hex chars without hyphens) matching the API key format.
func APISecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	add := func(key, val string) error {
		secretID, decoded, err := ParseSecretWithID(val)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if _, exists := secrets[secretID]; exists {
			return fmt.Errorf("duplicate secret_id '%s' found in environment variables (check PROSPECTOR_API_SECRET and PROSPECTOR_API_SECRET_* for conflicts)", secretID)
		}
		secrets[secretID] = decoded
		return nil
	}

	// Format: <secret_id>:<base64_secret>
	if val := os.Getenv("PROSPECTOR_API_SECRET"); val != "" {
		if err := add("PROSPECTOR_API_SECRET", val); err != nil {
			return nil, err
		}
	}

	// Numbered secrets keep old and new keys valid during rotation.
	for i := 1; ; i++ {
		key := fmt.Sprintf("PROSPECTOR_API_SECRET_%d", i)
		val := os.Getenv(key)
		if val == "" {
			break
		}
		if err := add(key, val); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}

// ParseSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 hex chars (UUIDv7 without hyphens).
func ParseSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars (UUIDv7 without hyphens)")
	}
	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(secret) < 32 {
		return "", nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return secretID, secret, nil
}
