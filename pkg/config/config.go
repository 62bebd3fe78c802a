package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port       string
	Env        string // development, staging, production
	CORSOrigin string

	// Database (optional, holdings fall back to memory)
	Database DatabaseConfig

	// Redis (optional cache + distributed rate limit)
	Redis RedisConfig

	// External APIs
	AlphaVantage AlphaVantageConfig
	Finnhub      FinnhubConfig
	OpenAI       OpenAIConfig

	// Screening
	Screener  ScreenerConfig
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	APIKey  string
	BaseURL string
}

// OpenAIConfig holds the narrative model configuration
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// ScreenerConfig holds screening parameters
type ScreenerConfig struct {
	Provider           string        // alphavantage, finnhub
	MaxSymbols         int           // symbols fetched per screen
	FetchDelay         time.Duration // minimum gap between provider fetches
	DefaultLimit       int           // stocks returned when the request omits limit
	ConcentrationLimit float64       // max fraction of the budget per security
	UniverseFile       string        // optional YAML override of the sector universe
	CacheTTL           time.Duration
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	WarmupSchedule     string
	NewsWarmupSchedule string
}

// Supported market data providers
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderFinnhub      = "finnhub"
)

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		CORSOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		AlphaVantage: AlphaVantageConfig{
			APIKey:  getEnv("ALPHA_VANTAGE_API_KEY", ""),
			BaseURL: getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co"),
		},

		Finnhub: FinnhubConfig{
			APIKey:  getEnv("FINNHUB_API_KEY", ""),
			BaseURL: getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		},

		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4.1-2025-04-14"),
			Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.3),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 2000),
		},

		// Screening
		Screener: ScreenerConfig{
			Provider:           getEnv("MARKET_DATA_PROVIDER", ProviderAlphaVantage),
			MaxSymbols:         getEnvAsInt("SCREENER_MAX_SYMBOLS", 3),
			FetchDelay:         getEnvAsDuration("SCREENER_FETCH_DELAY", "5s"),
			DefaultLimit:       getEnvAsInt("SCREENER_DEFAULT_LIMIT", 10),
			ConcentrationLimit: getEnvAsFloat("SCREENER_CONCENTRATION_LIMIT", 0.20),
			UniverseFile:       getEnv("SCREENER_UNIVERSE_FILE", ""),
			CacheTTL:           getEnvAsDuration("SCREENER_CACHE_TTL", "10m"),
		},

		Scheduler: SchedulerConfig{
			WarmupSchedule:     getEnv("SCHEDULER_WARMUP_SCHEDULE", "0 0 */6 * * *"),
			NewsWarmupSchedule: getEnv("SCHEDULER_NEWS_SCHEDULE", "0 */30 * * * *"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screener.Provider != ProviderAlphaVantage && c.Screener.Provider != ProviderFinnhub {
		return fmt.Errorf("MARKET_DATA_PROVIDER must be one of: %s, %s", ProviderAlphaVantage, ProviderFinnhub)
	}

	if c.Screener.ConcentrationLimit <= 0 || c.Screener.ConcentrationLimit > 1 {
		return fmt.Errorf("SCREENER_CONCENTRATION_LIMIT must be in (0, 1], got %v", c.Screener.ConcentrationLimit)
	}

	if c.Screener.MaxSymbols < 1 {
		return fmt.Errorf("SCREENER_MAX_SYMBOLS must be at least 1")
	}

	if c.Screener.FetchDelay < 0 {
		return fmt.Errorf("SCREENER_FETCH_DELAY must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
