// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and keeps its schema current.

# Opening

Open picks the driver from cfg.DatabaseType, pings, and migrates:

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

PostgreSQL (lib/pq) is the production target. SQLite (modernc.org/sqlite,
pure Go) is used for local runs and tests; its DSN always enables foreign
keys so cascading deletes behave the same on both.

# Migrations

Schema changes live in migrations/<dialect>/ as golang-migrate files and
are embedded in the binary. Migrate is idempotent; an up-to-date database
is not an error.

# Tables

  - users: accounts, bcrypt hash, hashed pending verification token
  - surveys: owner, publish flag, questions and theme as JSON
  - responses: anonymous submissions, answers as JSON
  - sessions: server-side sessions backing bearer tokens

# Relationships

	users 1──* surveys
	surveys 1──* responses
	users 1──* sessions (removed explicitly, not by foreign key)

Survey and response foreign keys use ON DELETE CASCADE.
*/
package db
