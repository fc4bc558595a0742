package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DBUrl              string
	RedisURL           string
	JWTSecret          string
	SupabaseURL        string
	SupabaseBucket     string
	SupabaseServiceKey string
	AppEnv             string
	LogLevel           string
	LogFormatJSON      bool
	MetricsEnabled     bool
	RateLimitRPS       float64
	RateLimitBurst     int
	Steps              StepsConfig
}

type StepsConfig struct {
	SyncInterval     time.Duration
	SyncMaxElapsed   time.Duration
	ForwardThreshold int
	Timezone         string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBUrl:              getEnv("DB_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:          jwtSecret,
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		AppEnv:             normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormatJSON:      getEnvBool("LOG_FORMAT_JSON", false),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		Steps: StepsConfig{
			SyncInterval:     getEnvDuration("STEP_SYNC_INTERVAL", 2*time.Hour),
			SyncMaxElapsed:   getEnvDuration("STEP_SYNC_MAX_ELAPSED", 10*time.Minute),
			ForwardThreshold: getEnvInt("STEP_FORWARD_THRESHOLD", 10),
			Timezone:         getEnv("STEP_TIMEZONE", "UTC"),
		},
	}

	if _, err := time.LoadLocation(cfg.Steps.Timezone); err != nil {
		return nil, fmt.Errorf("STEP_TIMEZONE is invalid: %w", err)
	}
	if cfg.Steps.SyncInterval <= 0 {
		return nil, fmt.Errorf("STEP_SYNC_INTERVAL must be positive")
	}

	return cfg, nil
}

func (c *Config) StepLocation() *time.Location {
	if c == nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Steps.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
