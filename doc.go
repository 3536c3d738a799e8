// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Survetic API server.

Survetic lets registered users author surveys, publish them, collect
anonymous responses, and review statistics or export the answers as CSV.

# Starting the Server

The server reads CLI flags with environment fallback. A .env file in the
working directory is loaded first when present:

	DATABASE_URL=survetic.db TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 5000 -d "postgres://..." -token-secret "..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL URL
  - TOKEN_SECRET (-token-secret): bearer token signing secret, 32+ bytes

Optional settings:

  - PORT (-p): server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite or postgres, guessed from the URL
  - SESSION_STORE, REDIS_URL: keep sessions in redis instead of SQL
  - RESEND_API_KEY, MAIL_FROM, BASE_URL: verification email delivery
  - LOG_LEVEL, LOG_FORMAT: slog level and text or json output

# Architecture

  - handlers: HTTP request handlers (auth, surveys, responses, templates, admin)
  - router: route table using Go 1.22+ patterns
  - middleware: authentication, CORS, logging, recovery, JSON helpers
  - accounts: registration, verification, login, sessions, admin user management
  - access: ownership and admin checks
  - stats, export: response statistics and CSV export
  - templates: built-in survey templates
  - store, session, db: persistence
  - mailer: verification email
  - models, apperr, auth, cliparse: shared types and helpers

See package documentation for each component.
*/
package main
