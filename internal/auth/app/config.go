package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/ltcms/pkg/httpx"
)

type Config struct {
	BearerSecret string // Required: JWT_SECRET, HS256 signing key
	CSRFSecret   string // Required: CSRF_SECRET, CSRF token signing key
	// InsecureCookies drops the Secure attribute. Only an explicit
	// AUTH_COOKIE_SECURE=false sets it, so the zero Config is secure.
	InsecureCookies bool

	AdminUsername string // Optional: bootstrap admin, skipped when either field is empty
	AdminPassword string

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./ltcms.db)
	DatabaseMaxConns     int           // Optional: connection pool bound (default: 5)
	TrustProxyHeaders    bool          // Optional: key IP rate limits on X-Forwarded-For (default: false)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the environment. Secrets are not validated here; that
// happens when the Application builds its secret registry.
func LoadConfig() Config {
	return Config{
		BearerSecret:         os.Getenv("JWT_SECRET"),
		CSRFSecret:           os.Getenv("CSRF_SECRET"),
		InsecureCookies:      !httpx.SecureCookies(os.Getenv("AUTH_COOKIE_SECURE")),
		AdminUsername:        os.Getenv("ADMIN_USERNAME"),
		AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
		DatabaseFile:         getEnvOrDefault("DATABASE_FILE", "ltcms.db"),
		DatabaseMaxConns:     getEnvIntOrDefault("DATABASE_MAX_CONNS", 5),
		TrustProxyHeaders:    getEnvBoolOrDefault("TRUST_PROXY_HEADERS", false),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
