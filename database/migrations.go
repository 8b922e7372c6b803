package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS admin_users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash BYTEA NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login    TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		message    TEXT NOT NULL,
		timestamp  TIMESTAMPTZ NOT NULL,
		ip_address TEXT NOT NULL,
		user_agent TEXT NOT NULL,
		read       BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_timestamp ON contacts (timestamp DESC)`,
}

var postgresEventSchema = []string{
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id          TEXT PRIMARY KEY,
		event_type  TEXT NOT NULL,
		page        TEXT NOT NULL,
		ip_address  TEXT NOT NULL,
		user_agent  TEXT NOT NULL,
		device_type TEXT NOT NULL,
		browser     TEXT NOT NULL,
		os          TEXT NOT NULL,
		location    TEXT NOT NULL,
		timestamp   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_events_timestamp ON analytics_events (timestamp DESC)`,
}

const clickHouseEventSchema = `
	CREATE TABLE IF NOT EXISTS analytics_events (
		id          String,
		event_type  LowCardinality(String),
		page        String,
		ip_address  String,
		user_agent  String,
		device_type LowCardinality(String),
		browser     LowCardinality(String),
		os          LowCardinality(String),
		location    String,
		timestamp   DateTime64(3, 'UTC')
	) ENGINE = MergeTree
	ORDER BY timestamp
`

// MigratePostgres creates the relational tables. withEvents also creates the
// analytics_events table for the Postgres event backend.
func MigratePostgres(ctx context.Context, db *sql.DB, withEvents bool) error {
	stmts := postgresSchema
	if withEvents {
		stmts = append(append([]string{}, stmts...), postgresEventSchema...)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migration failed: %w", err)
		}
	}
	return nil
}

// MigrateClickHouse creates the analytics_events MergeTree table.
func MigrateClickHouse(ctx context.Context, conn clickhouse.Conn) error {
	if err := conn.Exec(ctx, clickHouseEventSchema); err != nil {
		return fmt.Errorf("clickhouse migration failed: %w", err)
	}
	return nil
}
