// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package database handles connection management and migration execution
// using goose. It provides a Connect function that returns a ready-to-use
// *sql.DB pool for PostgreSQL (pgx) or SQLite, and a Migrate function for
// schema management.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Driver names accepted by Connect and Migrate.
const (
	Postgres = "postgres"
	SQLite   = "sqlite3"
)

//go:embed migrations
var embedMigrations embed.FS

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// Connect opens a connection pool for driver using the provided DSN.
// It verifies the connection with a ping before returning.
func Connect(driver, dsn string) (*sql.DB, error) {
	var sqlDriver string
	switch driver {
	case Postgres:
		sqlDriver = "pgx"
	case SQLite:
		sqlDriver = "sqlite3"
	default:
		return nil, fmt.Errorf("database open: unsupported driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	if driver == SQLite {
		// SQLite serializes writers; a single connection also keeps
		// in-memory databases alive for the life of the pool.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// Migrate runs all pending goose migrations for driver from the embedded
// SQL files. Migrations are embedded at compile time so no external files
// are needed at runtime.
func Migrate(db *sql.DB, driver string) error {
	if driver != Postgres && driver != SQLite {
		return fmt.Errorf("goose set dialect: unsupported driver %q", driver)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+driver); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "driver", driver)
	return nil
}

// Version returns the current schema version recorded by goose.
func Version(db *sql.DB, driver string) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(driver); err != nil {
		return 0, fmt.Errorf("goose set dialect: %w", err)
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return v, nil
}
