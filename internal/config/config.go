package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/retailops/storeops-backend/internal/pkg/clock"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Business BusinessConfig
	Redis    RedisConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	AutoMigrate bool
}

// JWTConfig holds the key used to verify access tokens
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// BusinessConfig holds the timezone work dates are computed in
type BusinessConfig struct {
	UTCOffset string
	TZName    string
}

// RedisConfig is optional; an empty Addr disables the schedule cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type JobsConfig struct {
	StaleSessionAfter time.Duration
}

// Load reads configuration from the environment, after loading .env when
// one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "storeops"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(maxConns),
		MinConns:    int32(minConns),
		AutoMigrate: autoMigrate,
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "storeops-backend"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	config.Business = BusinessConfig{
		UTCOffset: getEnv("BUSINESS_UTC_OFFSET", "+09:00"),
		TZName:    getEnv("BUSINESS_TZ_NAME", ""),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("STORE_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_CACHE_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		CacheTTL: cacheTTL,
	}

	staleHours, err := strconv.Atoi(getEnv("STALE_SESSION_HOURS", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_SESSION_HOURS: %w", err)
	}
	config.Jobs = JobsConfig{
		StaleSessionAfter: time.Duration(staleHours) * time.Hour,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid BUSINESS_UTC_OFFSET: %w", err)
	}
	if c.Jobs.StaleSessionAfter <= 0 {
		return fmt.Errorf("STALE_SESSION_HOURS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the fixed business timezone.
func (c *Config) Location() (*time.Location, error) {
	return clock.ParseOffset(c.Business.TZName, c.Business.UTCOffset)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return nil
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
