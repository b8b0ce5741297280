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
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	OpenAI OpenAIConfig

	// Core components
	Benchmark BenchmarkConfig
	Transform TransformConfig

	// Uploads
	Upload UploadConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
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

// OpenAIConfig holds the LLM endpoint configuration
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	RateLimit   float64 // requests per second, process-wide
	Timeout     time.Duration

	// Requests per minute shared by every replica through Redis, 0 disables
	GlobalLimit int

	// Per-company limit on /api/gpt endpoints
	CompanyLimit  int
	CompanyWindow time.Duration
}

// Enabled reports whether an API key is configured
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// BenchmarkConfig is handed to the benchmark calculator at construction
type BenchmarkConfig struct {
	HigherIsBetter      bool
	PassMargin          float64
	Breakdowns          bool
	PercentilePrecision int
}

// TransformConfig is handed to the long-to-wide transformer at construction
type TransformConfig struct {
	MergePolicy  string // last_wins, error
	UserLanguage string
}

// UploadConfig bounds survey file uploads
type UploadConfig struct {
	MaxBytes int64
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit env file. An empty path searches
// the default locations.
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		loadEnvFile()
	}

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
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

		OpenAI: OpenAIConfig{
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", ""),
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens:     getEnvAsInt("OPENAI_MAX_TOKENS", 1500),
			Temperature:   getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
			RateLimit:     getEnvAsFloat("OPENAI_RATE_LIMIT", 2),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", "60s"),
			GlobalLimit:   getEnvAsInt("OPENAI_GLOBAL_LIMIT", 0),
			CompanyLimit:  getEnvAsInt("GPT_COMPANY_LIMIT", 20),
			CompanyWindow: getEnvAsDuration("GPT_COMPANY_WINDOW", "1m"),
		},

		Benchmark: BenchmarkConfig{
			HigherIsBetter:      getEnvAsBool("BENCHMARK_HIGHER_IS_BETTER", true),
			PassMargin:          getEnvAsFloat("BENCHMARK_PASS_MARGIN", 0),
			Breakdowns:          getEnvAsBool("BENCHMARK_BREAKDOWNS", true),
			PercentilePrecision: getEnvAsInt("BENCHMARK_PERCENTILE_PRECISION", 0),
		},

		Transform: TransformConfig{
			MergePolicy:  getEnv("TRANSFORM_MERGE_POLICY", "last_wins"),
			UserLanguage: getEnv("TRANSFORM_USER_LANGUAGE", "EN"),
		},

		Upload: UploadConfig{
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Transform.MergePolicy != "last_wins" && c.Transform.MergePolicy != "error" {
		return fmt.Errorf("TRANSFORM_MERGE_POLICY must be one of: last_wins, error")
	}

	if c.Benchmark.PassMargin < 0 {
		return fmt.Errorf("BENCHMARK_PASS_MARGIN must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

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
