package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Notifier mode constants
const (
	NotifierModeLog  = "log"
	NotifierModeSMTP = "smtp"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	IsProduction bool

	// Auth settings. Session issuance lives in a separate service; this one
	// only verifies the bearer token it minted and trusts the resolved user id.
	JWTSecret string

	// Care circle settings
	InviteTokenTTL      time.Duration // how long a pending invite stays acceptable
	InviteSweepInterval time.Duration // background expiry sweep; <= 0 disables it

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Audit logging
	EnableAuditLogging bool
	AuditLogBufferSize int

	// Notifications
	NotifierMode  string // "log" or "smtp"
	NotifyTimeout time.Duration
	SMTPAddr      string // host:port
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string

	// Rate limiting (public token routes and invite creation)
	RateLimitEnabled          bool
	RateLimitStore            string // "memory" or "redis"
	PublicRequestsPerMinute   int
	InviteRequestsPerMinute   int
	RateLimitCleanupInterval  time.Duration
	RateLimitRedisAddr        string
	RateLimitRedisPassword    string
	RateLimitRedisDB          int

	// Metrics
	MetricsEnabled bool
	MetricsToken   string
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "mindwell.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		IsProduction: getEnvBool("PRODUCTION", false),

		JWTSecret: getEnv("JWT_SECRET", "your-256-bit-secret-change-in-production"),

		InviteTokenTTL:      getEnvDuration("INVITE_TOKEN_TTL", 7*24*time.Hour),
		InviteSweepInterval: getEnvDuration("INVITE_SWEEP_INTERVAL", time.Hour),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),

		NotifierMode:  getEnv("NOTIFIER_MODE", NotifierModeLog),
		NotifyTimeout: getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		SMTPAddr:      getEnv("SMTP_ADDR", ""),
		SMTPFrom:      getEnv("SMTP_FROM", "no-reply@mindwell.local"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),

		RateLimitEnabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		PublicRequestsPerMinute:  getEnvInt("PUBLIC_REQUESTS_PER_MINUTE", 30),
		InviteRequestsPerMinute:  getEnvInt("INVITE_REQUESTS_PER_MINUTE", 10),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		RateLimitRedisAddr:       getEnv("RATE_LIMIT_REDIS_ADDR", "localhost:6379"),
		RateLimitRedisPassword:   getEnv("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:         getEnvInt("RATE_LIMIT_REDIS_DB", 0),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),
	}
}

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be: sqlite, postgres)", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %s", c.DatabaseDriver)
	}
	if c.InviteTokenTTL <= 0 {
		return fmt.Errorf("INVITE_TOKEN_TTL must be positive, got %v", c.InviteTokenTTL)
	}
	switch c.NotifierMode {
	case NotifierModeLog:
	case NotifierModeSMTP:
		if c.SMTPAddr == "" {
			return fmt.Errorf("SMTP_ADDR is required when NOTIFIER_MODE=smtp")
		}
	default:
		return fmt.Errorf("invalid NOTIFIER_MODE: %s (must be: log, smtp)", c.NotifierMode)
	}
	switch c.RateLimitStore {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		return fmt.Errorf("invalid RATE_LIMIT_STORE: %s (must be: memory, redis)", c.RateLimitStore)
	}
	if c.IsProduction && c.JWTSecret == "your-256-bit-secret-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be changed in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
