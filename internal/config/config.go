package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/thanhpk/randstr"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// Database
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBQueryTimeout time.Duration

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Bootstrap admin, created on first start
	BootstrapAdminUsername string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	// Reports
	Timezone              *time.Location
	AnalystVerifiedWindow int

	// Redis cache for dashboard summaries (optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// RabbitMQ report events (optional)
	AMQPURL string

	// SMTP for temporary credentials (optional)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Observability
	SentryDSN      string
	AppEnv         string
	MetricsEnabled bool

	// Server
	Port        string
	CORSOrigins string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:       getEnv("DB_DRIVER", DriverPostgres),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "cash_collection"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBQueryTimeout: parseDuration(getEnv("DB_QUERY_TIMEOUT", "5s"), 5*time.Second),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		BootstrapAdminUsername: getEnv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
		BootstrapAdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", "admin@example.com"),
		BootstrapAdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),

		Timezone:              parseLocation(getEnv("TIMEZONE", "UTC")),
		AnalystVerifiedWindow: parseInt(getEnv("ANALYST_VERIFIED_WINDOW", "10"), 10),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		CacheTTL:      parseDuration(getEnv("CACHE_TTL", "30s"), 30*time.Second),

		AMQPURL: getEnv("AMQP_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     parseInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@example.com"),

		SentryDSN:      getEnv("SENTRY_DSN", ""),
		AppEnv:         getEnv("APP_ENV", "development"),
		MetricsEnabled: getEnv("METRICS_ENABLED", "true") == "true",

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randstr.String(64)
		slog.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	return cfg
}

// Validate checks the settings main cannot run without.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required for driver %s", c.DBDriver)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q, expected one of %s, %s, %s",
			c.DBDriver, DriverPostgres, DriverMySQL, DriverSQLite)
	}
	if c.AnalystVerifiedWindow < 0 {
		return fmt.Errorf("ANALYST_VERIFIED_WINDOW must not be negative")
	}
	return nil
}

// DSN returns the connection string for the configured driver. For sqlite,
// DB_NAME is the database file path.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case DriverSQLite:
		return c.DBName
	default:
		return "host=" + c.DBHost +
			" user=" + c.DBUser +
			" password=" + c.DBPassword +
			" dbname=" + c.DBName +
			" port=" + c.DBPort +
			" sslmode=" + c.DBSSLMode +
			" TimeZone=UTC"
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown TIMEZONE, falling back to UTC", "timezone", name)
		return time.UTC
	}
	return loc
}
