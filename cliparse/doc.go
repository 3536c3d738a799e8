// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type (sqlite or postgres)
	-token-secret   Bearer token signing secret
	-token-ttl      Bearer token lifetime (Go duration)
	-bcrypt-cost    bcrypt cost factor
	-session-store  sql or redis
	-redis-url      Redis URL
	-base-url       Public base URL for email links
	-mail-from      From address
	-resend-key     Resend API key
	-log-level      debug, info, warn, error
	-log-format     text or json

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p            (default 5000)
	DATABASE_URL    → -d            (required)
	DATABASE_TYPE   → -t            (inferred from the URL)
	TOKEN_SECRET    → -token-secret (required, >= 32 bytes)
	TOKEN_TTL       → -token-ttl    (default 168h)
	BCRYPT_COST     → -bcrypt-cost  (default 12)
	SESSION_STORE   → -session-store (default sql)
	REDIS_URL       → -redis-url    (required for redis)
	BASE_URL        → -base-url
	MAIL_FROM       → -mail-from
	RESEND_API_KEY  → -resend-key   (empty means log-only email)
	LOG_LEVEL       → -log-level
	LOG_FORMAT      → -log-format

CLI flags take precedence over environment variables. main loads a .env
file first, so values from it behave like real environment variables.
*/
package cliparse
