// Package database provides SQL persistence for level documents on SQLite
// or PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the connection and the dialect it speaks.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig connects to the database described by cfg and runs
// migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(*PostgresDialect); ok {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS levels (
			name TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at ` + d.dialect.TimestampType() + ` NOT NULL DEFAULT ` + d.dialect.Now() + `
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Dialect returns the SQL dialect of the connection.
func (d *Database) Dialect() Dialect {
	return d.dialect
}
