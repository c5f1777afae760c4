package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default backend used when neither AFO_API_URL nor a known hostname applies.
const DefaultAPIURL = "http://localhost:5002"

// hostAPIURLs maps the public hostname the portal is served from to the
// backend deployed alongside it.
var hostAPIURLs = map[string]string{
	"fontafo.vercel.app": "https://backafo.onrender.com",
}

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Backend
	APIURL         string
	PublicHostname string

	// Session
	SessionTTLHours     int
	SessionCookieSecure bool

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Reports
	AssociationName string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		PublicHostname:      getEnv("PUBLIC_HOSTNAME", ""),
		SessionTTLHours:     getEnvAsInt("SESSION_TTL_HOURS", 24),
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
		StoragePath:         getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 2),
		AllowedOrigins:      getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		AssociationName:     getEnv("ASSOCIATION_NAME", "AFO - All For One"),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
	}
	cfg.APIURL = ResolveAPIURL(getEnv("AFO_API_URL", ""), cfg.PublicHostname)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsProduction() && !cfg.SessionCookieSecure {
		return nil, fmt.Errorf("SESSION_COOKIE_SECURE must be enabled in production")
	}

	if cfg.SessionTTLHours <= 0 {
		cfg.SessionTTLHours = 24
	}

	return cfg, nil
}

// ResolveAPIURL picks the backend base URL: explicit override first, then the
// per-hostname convention, then the local development default.
func ResolveAPIURL(override, hostname string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	if url, ok := hostAPIURLs[strings.ToLower(hostname)]; ok {
		return url
	}
	return DefaultAPIURL
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}

// IsProduction reports whether the portal runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
