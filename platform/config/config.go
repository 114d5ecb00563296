// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// EmailConfig provides settings for the SMTP notification transport.
type EmailConfig interface {
	GetEmailHost() string
	GetEmailPort() int
	GetEmailUser() string
	GetEmailPassword() string
	GetEmailReceiver() string
	GetEmailFromName() string
	IsEmailConfigured() bool
}

// GeoConfig provides settings for the IP-geolocation provider chain.
type GeoConfig interface {
	GetGeoProviderTimeout() time.Duration
}

// ThrottleConfig provides settings for the submission throttle.
type ThrottleConfig interface {
	GetHistoryPath() string
	GetRedisURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	CORSAllowAll       bool
	CORSOrigins        []string
	EmailHost          string
	EmailPort          int
	EmailUser          string
	EmailPassword      string
	EmailReceiver      string
	EmailFromName      string
	GeoProviderTimeout time.Duration
	HistoryPath        string
	RedisURL           string
}

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// EmailConfig implementation
func (c *Config) GetEmailHost() string     { return c.EmailHost }
func (c *Config) GetEmailPort() int        { return c.EmailPort }
func (c *Config) GetEmailUser() string     { return c.EmailUser }
func (c *Config) GetEmailPassword() string { return c.EmailPassword }
func (c *Config) GetEmailReceiver() string { return c.EmailReceiver }
func (c *Config) GetEmailFromName() string { return c.EmailFromName }
func (c *Config) IsEmailConfigured() bool {
	return c.EmailHost != "" && c.EmailUser != "" && c.EmailPassword != ""
}

// GeoConfig implementation
func (c *Config) GetGeoProviderTimeout() time.Duration { return c.GeoProviderTimeout }

// ThrottleConfig implementation
func (c *Config) GetHistoryPath() string { return c.HistoryPath }
func (c *Config) GetRedisURL() string    { return c.RedisURL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := containsWildcard(corsOrigins)

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		EmailHost:          getEnv("EMAIL_HOST", ""),
		EmailPort:          mustInt(getEnv("EMAIL_PORT", "587")),
		EmailUser:          getEnv("EMAIL_USER", ""),
		EmailPassword:      getEnv("EMAIL_PASSWORD", ""),
		EmailReceiver:      getEnv("EMAIL_RECEIVER", ""),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "Monfily"),
		GeoProviderTimeout: mustDuration(getEnv("GEO_PROVIDER_TIMEOUT", "3s")),
		HistoryPath:        getEnv("MONFILY_HISTORY_PATH", "monfily_form_history.db"),
		RedisURL:           getEnv("REDIS_URL", ""),
	}

	if cfg.EmailPort <= 0 || cfg.EmailPort > 65535 {
		return nil, fmt.Errorf("EMAIL_PORT must be a valid TCP port")
	}
	if cfg.IsEmailConfigured() && cfg.EmailReceiver == "" {
		return nil, fmt.Errorf("EMAIL_RECEIVER is required when SMTP credentials are set")
	}
	if cfg.GeoProviderTimeout <= 0 {
		return nil, fmt.Errorf("GEO_PROVIDER_TIMEOUT must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
