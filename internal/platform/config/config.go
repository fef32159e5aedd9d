package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DevSigningKey is used when JWT_SIGNING_KEY is not set. Never use it outside local development.
	DevSigningKey        = "dev-secret-key-change-in-production"
	DefaultTokenIssuer   = "credvault"
	DefaultTokenAudience = "credvault-api"
	DefaultTokenTTL      = 15 * time.Minute
	DefaultGrantCacheTTL = 10 * time.Minute
	DefaultAuditTopic    = "credvault.audit"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	Environment   string
	LogLevel      string
	SeedDemo      bool
	JWTSigningKey string
	TokenIssuer   string
	TokenAudience string
	TokenTTL      time.Duration
	Database      DatabaseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Outbox        OutboxConfig
}

// DatabaseConfig selects the PostgreSQL record store when URL is set.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig selects the Redis grant cache when URL is set.
type RedisConfig struct {
	URL           string
	PoolSize      int
	MinIdleConns  int
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	GrantCacheTTL time.Duration
}

// KafkaConfig enables audit publishing to Kafka when Brokers is set.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

// OutboxConfig tunes the audit outbox worker.
type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Unset URLs select the in-memory and no-op backends.
func FromEnv() Server {
	return Server{
		Addr:          envString("CREDVAULT_ADDR", ":8080"),
		Environment:   envString("CREDVAULT_ENV", "development"),
		LogLevel:      envString("LOG_LEVEL", "info"),
		SeedDemo:      envBool("CREDVAULT_SEED_DEMO", false),
		JWTSigningKey: envString("JWT_SIGNING_KEY", DevSigningKey),
		TokenIssuer:   envString("JWT_ISSUER", DefaultTokenIssuer),
		TokenAudience: envString("JWT_AUDIENCE", DefaultTokenAudience),
		TokenTTL:      envDuration("TOKEN_TTL", DefaultTokenTTL),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:           os.Getenv("REDIS_URL"),
			PoolSize:      envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns:  envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:   envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:   envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:  envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			GrantCacheTTL: envDuration("GRANT_CACHE_TTL", DefaultGrantCacheTTL),
		},
		Kafka: KafkaConfig{
			Brokers:    strings.TrimSpace(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envString("AUDIT_TOPIC", DefaultAuditTopic),
		},
		Outbox: OutboxConfig{
			PollInterval: envDuration("OUTBOX_POLL_INTERVAL", time.Second),
			BatchSize:    envInt("OUTBOX_BATCH_SIZE", 100),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Malformed values fall back silently, matching how TOKEN_TTL has always been read.
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
