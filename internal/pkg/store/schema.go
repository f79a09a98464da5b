package store

import (
	"context"
	"fmt"
)

var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id                     TEXT PRIMARY KEY,
			name                   TEXT NOT NULL,
			description            TEXT NOT NULL,
			date_time              TIMESTAMPTZ NOT NULL,
			next_execute_date_time TIMESTAMPTZ NOT NULL,
			status                 TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'done')),
			user_id                TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			UNIQUE (user_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS tasks_status_next_execute_idx ON tasks (status, next_execute_date_time)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id                     TEXT PRIMARY KEY,
			name                   TEXT NOT NULL,
			description            TEXT NOT NULL,
			date_time              DATETIME NOT NULL,
			next_execute_date_time DATETIME NOT NULL,
			status                 TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'done')),
			user_id                TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			UNIQUE (user_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS tasks_status_next_execute_idx ON tasks (status, next_execute_date_time)`,
	},
}

func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemas[db.driver] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}
