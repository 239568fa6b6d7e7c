// Package db opens the prospector database and runs its migrations.
//
// SQLite serves single-node installs and tests, PostgreSQL serves shared
// deployments. Both go through sqlx; schema changes are embedded SQL files
// applied by MigrateUp, and every runtime query is a named query loaded by
// LoadQueries.
package db

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	maxOpenConns    = 16
	maxIdleConns    = 4
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 30 * time.Minute
)

// sqliteParams enables WAL so filter reads do not block imports.
const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// Open connects to sqlite://path or postgres://... and configures the pool.
// sqlite://file.db is relative to the working directory, sqlite:///abs/file.db is absolute.
func Open(dbURL string) (*sqlx.DB, error) {
	driverName, dataSource, err := parseURL(dbURL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// parseURL maps a database URL to a driver name and its data source string.
func parseURL(dbURL string) (driverName, dataSource string, err error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid database URL: %w", err)
	}

	switch u.Scheme {
	case "sqlite":
		path := u.Path
		if u.Host != "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL has no file path: %s", dbURL)
		}
		params := sqliteParams
		if u.RawQuery != "" {
			params = u.RawQuery
		}
		return "sqlite3", "file:" + path + "?" + params, nil
	case "postgres", "postgresql":
		return "postgres", dbURL, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme: %s (expected sqlite or postgres)", u.Scheme)
	}
}
