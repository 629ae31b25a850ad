package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Validator *validator.Validate
}

// AppConfig represents the application configuration
type AppConfig struct {
	Port               string
	Environment        string
	OpenSearchURL      string
	OpenSearchUser     string
	OpenSearchPass     string
	EnableLogging      bool
	LoggingLevel       string
	MetricsEnabled     bool
	OTLPEndpoint       string
	APIKey             string
	RateLimitPerMinute int
	ProviderConfigDB   string
	RequestTimeout     time.Duration
}

// IsProduction reports whether APP_ENV names a production deployment
func (c *AppConfig) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

var (
	instance          *Config
	appConfigInstance *AppConfig
	configMu          sync.Mutex
)

func App() *Config {
	configMu.Lock()
	defer configMu.Unlock()
	if instance == nil {
		instance = &Config{
			Validator: validator.New(),
		}
	}
	return instance
}

// GetAppConfig returns the application configuration
func GetAppConfig() *AppConfig {
	configMu.Lock()
	defer configMu.Unlock()
	if appConfigInstance == nil {
		appConfigInstance = loadAppConfig()
	}
	return appConfigInstance
}

// ReloadAppConfig rereads the environment, used after .env files are loaded
func ReloadAppConfig() *AppConfig {
	configMu.Lock()
	defer configMu.Unlock()
	appConfigInstance = loadAppConfig()
	return appConfigInstance
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Port:               GetEnv("APP_PORT", "9999"),
		Environment:        GetEnv("APP_ENV", "development"),
		OpenSearchURL:      GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
		OpenSearchUser:     GetEnv("OPENSEARCH_USER", ""),
		OpenSearchPass:     GetEnv("OPENSEARCH_PASSWORD", ""),
		EnableLogging:      GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
		LoggingLevel:       GetEnv("LOGGING_LEVEL", "info"),
		MetricsEnabled:     GetBoolEnv("METRICS_ENABLED", true),
		OTLPEndpoint:       GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		APIKey:             GetEnv("API_KEY", ""),
		RateLimitPerMinute: GetIntEnv("RATE_LIMIT_PER_MINUTE", 60),
		ProviderConfigDB:   GetEnv("PROVIDER_CONFIG_DB", ""),
		RequestTimeout:     GetDurationEnv("REQUEST_TIMEOUT", 150*time.Second),
	}
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetDurationEnv parses values like "90s" or "2m"
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
