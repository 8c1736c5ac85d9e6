package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	BaseURL     string

	AuthCookieSecure  bool
	SessionTTLHours   int

	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	RateLimit RateLimitConfig

	// Bootstrap staff account, created on startup when set.
	BootstrapStaffEmail    string
	BootstrapStaffPassword string
	BootstrapStaffName     string

	OtelEnabled          bool
	OtelExporterEndpoint string
	LogLevel             string
	LogFormat            string
}

// RateLimitConfig configures the redis-backed throttles on the
// verification-code resend and login endpoints.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ResendRate  float64
	ResendBurst int
	LoginRate   float64
	LoginBurst  int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:     getenv("APP_SERVICE", "recruit"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		BaseURL:     strings.TrimRight(getenv("BASE_URL", "http://localhost:8080"), "/"),

		AuthCookieSecure: authCookieSecure,
		SessionTTLHours:  getenvInt("SESSION_TTL_HOURS", 72),

		DBHost:        getenv("DATABASE_HOST", "localhost"),
		DBPort:        getenv("DATABASE_PORT", "5432"),
		DBName:        getenv("DATABASE_NAME", "recruit"),
		DBUser:        getenv("DATABASE_USER", "recruit"),
		DBPassword:    getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:     getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn: getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn: getenvInt("DATABASE_MAX_OPEN_CONN", 25),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", "no-reply@recruit.local"),

		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			ResendRate:    getenvFloat("RATE_LIMIT_RESEND_RATE", 0.05),
			ResendBurst:   getenvInt("RATE_LIMIT_RESEND_BURST", 3),
			LoginRate:     getenvFloat("RATE_LIMIT_LOGIN_RATE", 0.5),
			LoginBurst:    getenvInt("RATE_LIMIT_LOGIN_BURST", 10),
		},

		BootstrapStaffEmail:    getenv("BOOTSTRAP_STAFF_EMAIL", ""),
		BootstrapStaffPassword: getenv("BOOTSTRAP_STAFF_PASSWORD", ""),
		BootstrapStaffName:     getenv("BOOTSTRAP_STAFF_NAME", "Recruit Staff"),

		OtelEnabled:          getenvBool("OTEL_ENABLED", false),
		OtelExporterEndpoint: getenv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
		LogLevel:             getenv("LOG_LEVEL", "info"),
		LogFormat:            getenv("LOG_FORMAT", "json"),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPortalConfigHolder),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
