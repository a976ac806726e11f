package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CanonicalFeedURL is the provider export the dashboard was built around.
const CanonicalFeedURL = "https://docs.google.com/spreadsheets/d/1FKPhjul2X1qDdfcv3EneYOT08FN7lBsUaIGTS_j238g/export?format=csv"

type Config struct {
	Server     ServerConfig
	Source     SourceConfig
	Ingest     IngestConfig
	Pagination PaginationConfig
	Logger     LoggerConfig
	Security   SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type SourceConfig struct {
	URL             string
	FetchTimeout    time.Duration
	CredentialsFile string
}

type IngestConfig struct {
	Workers              int
	BatchSize            int
	UnmappedStatusPolicy string
	StatusMapFile        string
}

type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

var (
	validLogLevels      = []string{"debug", "info", "warn", "error"}
	validLogFormats     = []string{"json", "text"}
	validUnmappedPolicy = []string{"passthrough", "failed", "reject"}
)

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Source: SourceConfig{
			URL:             getEnvString("SOURCE_URL", CanonicalFeedURL),
			FetchTimeout:    getEnvDuration("SOURCE_FETCH_TIMEOUT", 60*time.Second),
			CredentialsFile: getEnvString("GOOGLE_CREDENTIALS_FILE", ""),
		},
		Ingest: IngestConfig{
			Workers:              getEnvInt("INGEST_WORKERS", 4),
			BatchSize:            getEnvInt("INGEST_BATCH_SIZE", 5000),
			UnmappedStatusPolicy: strings.ToLower(getEnvString("UNMAPPED_STATUS_POLICY", "passthrough")),
			StatusMapFile:        getEnvString("STATUS_MAP_FILE", ""),
		},
		Pagination: PaginationConfig{
			DefaultPageSize: getEnvInt("PAGE_SIZE_DEFAULT", 10),
			MaxPageSize:     getEnvInt("PAGE_SIZE_MAX", 500),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 50),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 20),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}

	if strings.TrimSpace(c.Source.URL) == "" {
		return fmt.Errorf("source URL cannot be empty")
	}

	if c.Source.FetchTimeout <= 0 {
		return fmt.Errorf("source fetch timeout must be positive")
	}

	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest workers must be at least 1, got %d", c.Ingest.Workers)
	}

	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("ingest batch size must be at least 1, got %d", c.Ingest.BatchSize)
	}

	if !slices.Contains(validUnmappedPolicy, c.Ingest.UnmappedStatusPolicy) {
		return fmt.Errorf("invalid unmapped status policy %q, must be one of: %s", c.Ingest.UnmappedStatusPolicy, strings.Join(validUnmappedPolicy, ", "))
	}

	if c.Pagination.DefaultPageSize < 1 {
		return fmt.Errorf("default page size must be positive")
	}

	if c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		return fmt.Errorf("max page size %d is below default page size %d", c.Pagination.MaxPageSize, c.Pagination.DefaultPageSize)
	}

	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
