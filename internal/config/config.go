package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Insights InsightsConfig
	Cache    CacheConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SourceConfig locates the purchase history. Path may be a local file, an
// http(s) URL, sqlite://path or a postgres:// DSN.
type SourceConfig struct {
	Path          string
	Sheet         string
	Table         string
	Watch         bool
	WatchDebounce time.Duration
	LoadTimeout   time.Duration
}

type InsightsConfig struct {
	TopN            int
	HistogramBins   int
	RadarCategories int
	ReferenceYear   int
	DateStride      int
	PreserveDates   bool
}

type CacheConfig struct {
	Size int
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

// Load reads the environment, after merging a .env file from the working
// directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Source: SourceConfig{
			Path:          getEnvString("SOURCE_PATH", "Customer-Purchase-History.xlsx"),
			Sheet:         getEnvString("SOURCE_SHEET", ""),
			Table:         getEnvString("SOURCE_TABLE", "purchases"),
			Watch:         getEnvBool("SOURCE_WATCH", true),
			WatchDebounce: getEnvDuration("SOURCE_WATCH_DEBOUNCE", 500*time.Millisecond),
			LoadTimeout:   getEnvDuration("SOURCE_LOAD_TIMEOUT", 30*time.Second),
		},
		Insights: InsightsConfig{
			TopN:            getEnvInt("INSIGHTS_TOP_N", 20),
			HistogramBins:   getEnvInt("INSIGHTS_HISTOGRAM_BINS", 10),
			RadarCategories: getEnvInt("INSIGHTS_RADAR_CATEGORIES", 3),
			ReferenceYear:   getEnvInt("INSIGHTS_REFERENCE_YEAR", 2025),
			DateStride:      getEnvInt("INSIGHTS_DATE_STRIDE", 23),
			PreserveDates:   getEnvBool("INSIGHTS_PRESERVE_DATES", false),
		},
		Cache: CacheConfig{
			Size: getEnvInt("CACHE_SIZE", 16),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
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

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Source.Path == "" {
		return fmt.Errorf("source path cannot be empty")
	}

	if c.Source.LoadTimeout <= 0 {
		return fmt.Errorf("source load timeout must be positive")
	}

	if c.Source.Watch && c.Source.WatchDebounce <= 0 {
		return fmt.Errorf("source watch debounce must be positive")
	}

	if c.Insights.TopN < 1 {
		return fmt.Errorf("insights top-N must be at least 1, got %d", c.Insights.TopN)
	}

	if c.Insights.HistogramBins < 1 {
		return fmt.Errorf("insights histogram bins must be at least 1, got %d", c.Insights.HistogramBins)
	}

	if c.Insights.RadarCategories < 1 {
		return fmt.Errorf("insights radar categories must be at least 1, got %d", c.Insights.RadarCategories)
	}

	if c.Insights.DateStride < 1 {
		return fmt.Errorf("insights date stride must be at least 1, got %d", c.Insights.DateStride)
	}

	if c.Cache.Size < 1 {
		return fmt.Errorf("cache size must be at least 1, got %d", c.Cache.Size)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
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
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
