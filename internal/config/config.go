// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the passport service.
type Config struct {
	Port int
	Env  string // "development" or "production"

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// DatabaseURL selects the Postgres-backed user store when set;
	// an empty value falls back to the in-memory store (dev/test only).
	DatabaseURL string

	// RedisAddr selects the Redis-backed session store when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL time.Duration
	CookieName string

	// AdminEmails are granted the admin role at registration time.
	AdminEmails []string

	BcryptCost int

	CORSOrigins []string

	LogLevel  string
	LogFormat string

	// Optional Kafka audit event publishing.
	KafkaBrokers    string
	KafkaAuditTopic string

	// Optional Consul service registration.
	ConsulAddr  string
	ConsulToken string
	ServiceHost string
}

// Load builds a Config from the environment, applying defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		redisDB, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}

	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	cfg := &Config{
		Port:            port,
		Env:             getEnv("APP_ENV", "development"),
		ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		SessionTTL:      getEnvDuration("SESSION_TTL", time.Hour),
		CookieName:      getEnv("COOKIE_NAME", "passport_session"),
		AdminEmails:     splitList(os.Getenv("ADMIN_EMAILS")),
		BcryptCost:      bcryptCost,
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaAuditTopic: getEnv("KAFKA_TOPIC_AUDIT_EVENTS", "auth-audit-events"),
		ConsulAddr:      os.Getenv("CONSUL_HTTP_ADDR"),
		ConsulToken:     os.Getenv("CONSUL_HTTP_TOKEN"),
		ServiceHost:     getEnv("SERVICE_HOST", "localhost"),
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
