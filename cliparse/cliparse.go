// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Session store backends
const (
	SessionStoreSQL   = "sql"
	SessionStoreRedis = "redis"
)

// Database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

const (
	defaultPort           = 5000
	defaultTokenTTL       = 7 * 24 * time.Hour
	defaultBcryptCost     = 12
	recommendedBcryptCost = 10
	minSecretLen          = 32
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	TokenSecret string
	TokenTTL    time.Duration
	BcryptCost  int

	SessionStore string
	RedisURL     string

	BaseURL      string
	MailFrom     string
	ResendAPIKey string

	LogLevel  string
	LogFormat string
}

// ParseFlags parses CLI args, falling back to environment variables for
// anything not given on the command line.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var ttl string

	fs := flag.NewFlagSet("survetic", flag.ContinueOnError)

	// Network / storage
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Tokens (prefer env for the secret)
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "Bearer token signing secret (prefer env)")
	fs.StringVar(&ttl, "token-ttl", "", "Bearer token lifetime, e.g. 168h")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", 0, "bcrypt cost factor")

	fs.StringVar(&cfg.SessionStore, "session-store", "", "Session store (sql or redis)")
	fs.StringVar(&cfg.RedisURL, "redis-url", "", "Redis URL for the redis session store")

	// Email
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL used in email links")
	fs.StringVar(&cfg.MailFrom, "mail-from", "", "From address for outgoing email")
	fs.StringVar(&cfg.ResendAPIKey, "resend-key", "", "Resend API key (prefer env)")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = firstNonEmpty(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), guessDatabaseType(cfg.DatabaseURL))
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	cfg.TokenSecret = firstNonEmpty(cfg.TokenSecret, os.Getenv("TOKEN_SECRET"))
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}
	if len(cfg.TokenSecret) < minSecretLen {
		return Config{}, fmt.Errorf("TOKEN_SECRET must be at least %d bytes", minSecretLen)
	}

	ttl = firstNonEmpty(ttl, os.Getenv("TOKEN_TTL"))
	if ttl == "" {
		cfg.TokenTTL = defaultTokenTTL
	} else {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return Config{}, errors.New("invalid TOKEN_TTL")
		}
		cfg.TokenTTL = d
	}

	if cfg.BcryptCost == 0 {
		if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
			cost, err := strconv.Atoi(costStr)
			if err != nil {
				return Config{}, errors.New("invalid BCRYPT_COST env variable")
			}
			cfg.BcryptCost = cost
		} else {
			cfg.BcryptCost = defaultBcryptCost
		}
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.BcryptCost < recommendedBcryptCost {
		slog.Warn("bcrypt cost below recommended minimum", "cost", cfg.BcryptCost, "recommended", recommendedBcryptCost)
	}

	cfg.SessionStore = firstNonEmpty(cfg.SessionStore, os.Getenv("SESSION_STORE"), SessionStoreSQL)
	cfg.RedisURL = firstNonEmpty(cfg.RedisURL, os.Getenv("REDIS_URL"))
	switch cfg.SessionStore {
	case SessionStoreSQL:
	case SessionStoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL required for the redis session store")
		}
	default:
		return Config{}, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}

	cfg.BaseURL = strings.TrimRight(firstNonEmpty(cfg.BaseURL, os.Getenv("BASE_URL"), fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")
	cfg.MailFrom = firstNonEmpty(cfg.MailFrom, os.Getenv("MAIL_FROM"), "Survetic <noreply@survetic.com>")
	cfg.ResendAPIKey = firstNonEmpty(cfg.ResendAPIKey, os.Getenv("RESEND_API_KEY"))

	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), "info")
	cfg.LogFormat = firstNonEmpty(cfg.LogFormat, os.Getenv("LOG_FORMAT"), "text")

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func guessDatabaseType(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DatabasePostgres
	}
	return DatabaseSQLite
}
