package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	minSecretLength = 16
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration
	RefreshTTL  time.Duration
	BcryptCost  int

	AppBaseURL  string
	CORSOrigins []string

	RateLimitRPS   float64
	RateLimitBurst int

	SMTP    SMTP
	Archive Archive

	LogLevel        string
	LogFormat       string
	JanitorSchedule string
}

// SMTP configures outbound mail. An empty Host selects the logging sender.
type SMTP struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Enabled reports whether mail should go to a real server.
func (s SMTP) Enabled() bool { return s.Host != "" }

// Archive configures the S3 quote archive. An empty Bucket disables it.
type Archive struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether quotes should be archived.
func (a Archive) Enabled() bool { return a.Bucket != "" }

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:           fallback(os.Getenv("PORT"), "8080"),
		StorageDriver:  strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), DriverPostgres)),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:      fallback(os.Getenv("JWT_ISSUER"), "itarix-api"),
		JWTAudience:    fallback(os.Getenv("JWT_AUDIENCE"), "itarix-clients"),
		JWTTTL:         time.Duration(positiveInt("JWT_TTL_MINUTES", 15)) * time.Minute,
		RefreshTTL:     time.Duration(positiveInt("REFRESH_TTL_HOURS", 168)) * time.Hour,
		BcryptCost:     positiveInt("BCRYPT_COST", bcrypt.DefaultCost),
		AppBaseURL:     strings.TrimRight(fallback(os.Getenv("APP_BASE_URL"), "http://localhost:3000"), "/"),
		CORSOrigins:    parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		RateLimitBurst: positiveInt("RATE_LIMIT_BURST", 20),
		SMTP: SMTP{
			Host:      strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:      positiveInt("SMTP_PORT", 587),
			Username:  strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromEmail: strings.TrimSpace(os.Getenv("SMTP_FROM_EMAIL")),
			FromName:  fallback(os.Getenv("SMTP_FROM_NAME"), "ITARIX"),
		},
		Archive: Archive{
			Bucket:    strings.TrimSpace(os.Getenv("QUOTE_ARCHIVE_BUCKET")),
			Region:    fallback(os.Getenv("S3_REGION"), "us-east-1"),
			Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			AccessKey: strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		},
		LogLevel:        fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:       fallback(os.Getenv("LOG_FORMAT"), "json"),
		JanitorSchedule: fallback(os.Getenv("JANITOR_SCHEDULE"), "@every 1h"),
	}

	cfg.RateLimitRPS = 10
	if rps, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")), 64); err == nil && rps >= 0 {
		cfg.RateLimitRPS = rps
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.FromEmail == "" {
		return Config{}, errors.New("SMTP_FROM_EMAIL is required when SMTP_HOST is set")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

// positiveInt reads an integer env var, falling back to def when it is
// missing, malformed or not positive.
func positiveInt(key string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && n > 0 {
		return n
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
