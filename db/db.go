// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/survetic/cliparse"
)

//go:embed migrations
var migrations embed.FS

// SQLite needs foreign keys switched on per connection, and a busy timeout
// so concurrent writers queue instead of failing.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// Open connects to the configured database, verifies the connection, and
// applies pending migrations.
func Open(ctx context.Context, cfg cliparse.Config) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.DatabaseType {
	case cliparse.DatabasePostgres:
		conn, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)

	case cliparse.DatabaseSQLite:
		conn, err = sql.Open("sqlite", SQLiteDSN(cfg.DatabaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// One writer at a time; also keeps ":memory:" databases shared
		conn.SetMaxOpenConns(1)

	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := Migrate(conn, cfg.DatabaseType, cfg.DatabaseURL); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// SQLiteDSN turns a path or sqlite:// URL into a modernc DSN with the
// pragmas the schema relies on.
func SQLiteDSN(url string) string {
	path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "file:")
	if strings.Contains(path, "?") {
		return "file:" + path + "&" + sqlitePragmas
	}
	return "file:" + path + "?" + sqlitePragmas
}

// Migrate applies the embedded migrations for the given dialect. Safe to
// call repeatedly.
func Migrate(conn *sql.DB, dialect, url string) error {
	src, err := iofs.New(migrations, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var m *migrate.Migrate
	switch dialect {
	case cliparse.DatabaseSQLite:
		dst, err := sqlite.WithInstance(conn, &sqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to init migration driver: %w", err)
		}
		// Not closed: closing the driver closes conn
		m, err = migrate.NewWithInstance("iofs", src, "sqlite", dst)
		if err != nil {
			return fmt.Errorf("failed to init migrations: %w", err)
		}

	case cliparse.DatabasePostgres:
		// The postgres driver pins a connection of its own, so give it one
		// outside the pool and close it afterwards.
		m, err = migrate.NewWithSourceInstance("iofs", src, url)
		if err != nil {
			return fmt.Errorf("failed to init migrations: %w", err)
		}
		defer m.Close()

	default:
		return fmt.Errorf("unsupported database type %q", dialect)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		// db already up to date
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
