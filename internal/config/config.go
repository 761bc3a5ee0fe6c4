// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	// JWTSecret signs session tokens; StreamTokenSecret signs stream tokens.
	// The two domains must never share key material.
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	StreamTokenSecret        string `mapstructure:"STREAM_TOKEN_SECRET"`
	StreamTokenTTLSeconds    int    `mapstructure:"STREAM_TOKEN_TTL_SECONDS"`
	SessionTokenTTLHours     int    `mapstructure:"SESSION_TOKEN_TTL_HOURS"`
	AnalyticsCacheTTLSeconds int    `mapstructure:"ANALYTICS_CACHE_TTL_SECONDS"`

	StorageBackend   string `mapstructure:"STORAGE_BACKEND"` // "local" or "s3"
	UploadDir        string `mapstructure:"UPLOAD_DIR"`
	MaxUploadSizeMB  int    `mapstructure:"MAX_UPLOAD_SIZE_MB"`
	S3Endpoint       string `mapstructure:"S3_ENDPOINT"`
	S3Bucket         string `mapstructure:"S3_BUCKET"`
	S3AccessKey      string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey      string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL         bool   `mapstructure:"S3_USE_SSL"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"` // "stdout" or "otlp"
	TracingOTLPEndpoint string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; environment variables and defaults are
	// enough to boot in development.
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", "8480")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "mediavault")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("JWT_SECRET", "dev-session-secret-change-in-production")
	viper.SetDefault("STREAM_TOKEN_SECRET", "dev-stream-secret-change-in-production")
	viper.SetDefault("STREAM_TOKEN_TTL_SECONDS", 600)
	viper.SetDefault("SESSION_TOKEN_TTL_HOURS", 24)
	viper.SetDefault("ANALYTICS_CACHE_TTL_SECONDS", 300)

	viper.SetDefault("STORAGE_BACKEND", "local")
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE_MB", 512)
	viper.SetDefault("S3_USE_SSL", true)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StreamTokenSecret == "" {
		return errors.New("STREAM_TOKEN_SECRET is required")
	}
	// Session and stream tokens live in separate trust domains; sharing a
	// secret would let one credential class verify as the other.
	if c.JWTSecret == c.StreamTokenSecret {
		return errors.New("JWT_SECRET and STREAM_TOKEN_SECRET must be distinct")
	}
	if c.StreamTokenTTLSeconds <= 0 {
		return errors.New("STREAM_TOKEN_TTL_SECONDS must be positive")
	}
	if c.SessionTokenTTLHours <= 0 {
		return errors.New("SESSION_TOKEN_TTL_HOURS must be positive")
	}
	if c.AnalyticsCacheTTLSeconds <= 0 {
		return errors.New("ANALYTICS_CACHE_TTL_SECONDS must be positive")
	}
	if c.StorageBackend != "local" && c.StorageBackend != "s3" {
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected local or s3)", c.StorageBackend)
	}
	if c.StorageBackend == "s3" && (c.S3Endpoint == "" || c.S3Bucket == "") {
		return errors.New("S3_ENDPOINT and S3_BUCKET are required when STORAGE_BACKEND is s3")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	if isProduction {
		if c.JWTSecret == "dev-session-secret-change-in-production" ||
			c.StreamTokenSecret == "dev-stream-secret-change-in-production" {
			return errors.New("token secrets must be changed from their default values in production")
		}
		if len(c.JWTSecret) < 32 || len(c.StreamTokenSecret) < 32 {
			return errors.New("token secrets must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
	} else {
		if len(c.JWTSecret) < 32 || len(c.StreamTokenSecret) < 32 {
			log.Println("WARNING: token secrets are shorter than 32 characters. Use stronger secrets for production.")
		}
	}

	return nil
}

// StreamTokenTTL returns the stream token lifetime as a duration.
func (c *Config) StreamTokenTTL() time.Duration {
	return time.Duration(c.StreamTokenTTLSeconds) * time.Second
}

// SessionTokenTTL returns the session token lifetime as a duration.
func (c *Config) SessionTokenTTL() time.Duration {
	return time.Duration(c.SessionTokenTTLHours) * time.Hour
}

// AnalyticsCacheTTL returns the analytics snapshot cache lifetime as a duration.
func (c *Config) AnalyticsCacheTTL() time.Duration {
	return time.Duration(c.AnalyticsCacheTTLSeconds) * time.Second
}
