package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Cloudinary CloudinaryConfig
	Cache      CacheConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

// DatabaseConfig holds the connection pool and migration settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

// AuthConfig holds the publish token settings
type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

// CloudinaryConfig holds asset storage credentials
type CloudinaryConfig struct {
	CloudName      string
	APIKey         string
	APISecret      string
	UploadFolder   string
	AllowedFormats []string
	MaxRetries     int
}

// CacheConfig holds cache provider settings
type CacheConfig struct {
	Provider        string
	TTL             time.Duration
	MaxKeys         int
	CleanupInterval time.Duration
	RedisURL        string
	RedisPrefix     string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, with .env support in
// development.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env == "development" {
		_ = godotenv.Load()
	}

	config := &Config{
		Server:     loadServerConfig(env),
		Database:   loadDatabaseConfig(),
		Auth:       loadAuthConfig(),
		Cloudinary: loadCloudinaryConfig(),
		Cache:      loadCacheConfig(),
		Logging:    loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Environment:     env,
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             getEnv("DATABASE_URL", ""),
		MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		MigrationsPath:  getEnv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: getDurationEnv("JWT_EXPIRY", 24*time.Hour),
	}
}

func loadCloudinaryConfig() CloudinaryConfig {
	formats := strings.Split(getEnv("CLOUDINARY_ALLOWED_FORMATS", "png"), ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(formats[i])
	}

	return CloudinaryConfig{
		CloudName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:         getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:      getEnv("CLOUDINARY_API_SECRET", ""),
		UploadFolder:   getEnv("CLOUDINARY_UPLOAD_FOLDER", "badges"),
		AllowedFormats: formats,
		MaxRetries:     getIntEnv("CLOUDINARY_MAX_RETRIES", 3),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:        getEnv("CACHE_PROVIDER", "memory"),
		TTL:             getDurationEnv("CACHE_TTL", 5*time.Minute),
		MaxKeys:         getIntEnv("CACHE_MAX_KEYS", 10000),
		CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", time.Minute),
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPrefix:     getEnv("REDIS_PREFIX", "badgehub"),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	format := "console"
	level := "debug"
	if env == "production" {
		format = "json"
		level = "info"
	}
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", level),
		Format: getEnv("LOG_FORMAT", format),
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Server.Environment == "production" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.Cache.Provider == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER=redis")
	}
	return nil
}

// IsProduction returns true in the production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
