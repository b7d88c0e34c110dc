package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	HTTP        HTTPConfig
	RxNav       SourceConfig
	MedlinePlus SourceConfig
	DailyMed    SourceConfig
	OpenFDA     SourceConfig
	OTEL        OTELConfig

	// DisableExternal puts every external client in cache-only mode:
	// cache misses return "no data" instead of calling out.
	DisableExternal bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds outbound HTTP transport configuration
type HTTPConfig struct {
	Timeout        time.Duration
	MaxAttempts    int
	BackoffCeiling time.Duration
}

// SourceConfig holds per-external-source configuration
type SourceConfig struct {
	BaseURL         string
	APIKey          string
	TTLDays         int
	RateLimitPerMin int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "dawadex"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		HTTP: HTTPConfig{
			Timeout:        getEnvAsDuration("EXTERNAL_REQUEST_TIMEOUT", 20*time.Second),
			MaxAttempts:    getEnvAsInt("EXTERNAL_MAX_ATTEMPTS", 5),
			BackoffCeiling: getEnvAsDuration("EXTERNAL_BACKOFF_CEILING", 60*time.Second),
		},
		RxNav: SourceConfig{
			BaseURL:         getEnv("RXNAV_BASE_URL", "https://rxnav.nlm.nih.gov/REST"),
			TTLDays:         getEnvAsInt("RXNAV_TTL_DAYS", 30),
			RateLimitPerMin: getEnvAsInt("RXNAV_RATE_LIMIT_PER_MIN", 120),
		},
		MedlinePlus: SourceConfig{
			BaseURL:         getEnv("MEDLINEPLUS_BASE_URL", "https://wsearch.nlm.nih.gov/ws/query"),
			TTLDays:         getEnvAsInt("MEDLINEPLUS_TTL_DAYS", 7),
			RateLimitPerMin: getEnvAsInt("MEDLINEPLUS_RATE_LIMIT_PER_MIN", 60),
		},
		DailyMed: SourceConfig{
			BaseURL:         getEnv("DAILYMED_BASE_URL", "https://dailymed.nlm.nih.gov/dailymed/services/v2"),
			TTLDays:         getEnvAsInt("DAILYMED_TTL_DAYS", 7),
			RateLimitPerMin: getEnvAsInt("DAILYMED_RATE_LIMIT_PER_MIN", 15),
		},
		OpenFDA: SourceConfig{
			BaseURL:         getEnv("OPENFDA_BASE_URL", "https://api.fda.gov"),
			APIKey:          getEnv("OPENFDA_API_KEY", ""),
			TTLDays:         getEnvAsInt("OPENFDA_TTL_DAYS", 7),
			RateLimitPerMin: getEnvAsInt("OPENFDA_RATE_LIMIT_PER_MIN", 60),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "dawadex"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		DisableExternal: getEnvAsBool("DISABLE_EXTERNAL", false),
	}

	if cfg.HTTP.MaxAttempts < 1 {
		return nil, fmt.Errorf("EXTERNAL_MAX_ATTEMPTS must be at least 1")
	}
	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TTL returns the source cache TTL as a duration
func (c *SourceConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
