package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	LogLevel string

	// Identity provider token settings
	JWTSecret string
	JWTIssuer string
	LoginURL  string

	CORSOrigins    string
	StrictCheckout bool
	BodyLimit      int
	RateLimit      int // requests per IP per minute
}

// Load reads settings from the environment. A .env file in the working
// directory is loaded first when present; real env vars win.
func Load() Config {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	return Config{
		Port:           getEnv("PORT", "8080"),
		DBDSN:          getEnv("DB_DSN", "marketplace.db"), // sqlite file in project root
		LogFile:        getEnv("LOG_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:      getEnv("JWT_ISSUER", ""),
		LoginURL:       getEnv("LOGIN_URL", "/api/login"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		StrictCheckout: getBool("STRICT_CHECKOUT", false),
		BodyLimit:      getInt("BODY_LIMIT", 1<<20), // 1 MiB
		RateLimit:      getInt("RATE_LIMIT", 120),
	}
}

// Fields returns the loggable settings; secrets are left out.
func (c Config) Fields() map[string]any {
	return map[string]any{
		"port":            c.Port,
		"db_dsn":          c.DBDSN,
		"log_file":        c.LogFile,
		"log_level":       c.LogLevel,
		"jwt_issuer":      c.JWTIssuer,
		"login_url":       c.LoginURL,
		"cors_origins":    c.CORSOrigins,
		"strict_checkout": c.StrictCheckout,
		"body_limit":      c.BodyLimit,
		"rate_limit":      c.RateLimit,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
