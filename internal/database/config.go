package database

import (
	"time"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
)

// Config holds database connection configuration.
type Config struct {
	// Driver specifies which database to use: "sqlite" or "postgres"
	Driver string

	// SQLite configuration
	SQLitePath string

	// PostgreSQL configuration
	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL-specific configuration.
type PostgresConfig struct {
	config.PostgresConfig

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a Config with sensible defaults for SQLite.
func DefaultConfig(sqlitePath string) Config {
	return Config{
		Driver:     string(DialectSQLite),
		SQLitePath: sqlitePath,
	}
}

// DefaultPostgresConfig returns PostgresConfig with recommended pool settings.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		PostgresConfig: config.PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// FromStorage derives a connection config from the storage section. The
// pool settings keep their defaults.
func FromStorage(s config.StorageConfig) Config {
	pg := DefaultPostgresConfig()
	pg.PostgresConfig = s.Postgres
	return Config{
		Driver:     s.Driver,
		SQLitePath: s.SQLitePath,
		Postgres:   pg,
	}
}
