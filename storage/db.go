package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS blobs (
		path TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS train_matches (
		date TEXT NOT NULL,
		trip_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		from_stop TEXT NOT NULL,
		to_stop TEXT NOT NULL,
		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (date, trip_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS route_summaries (
		event_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		position INT NOT NULL,
		trip_ids TEXT NOT NULL,
		PRIMARY KEY (event_id, user_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		picture TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		user_id TEXT NOT NULL,
		friend_id TEXT NOT NULL,
		ghosted BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, friend_id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		event_id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		event_start TIMESTAMPTZ NOT NULL,
		event_end TIMESTAMPTZ NOT NULL,
		recurring BOOLEAN NOT NULL DEFAULT FALSE,
		recurrence_end TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the tables railmatch needs if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return &PersistenceError{Op: "ensure schema", Err: err}
		}
	}
	return nil
}
