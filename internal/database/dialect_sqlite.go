package database

// SQLiteDialect implements Dialect for SQLite databases.
type SQLiteDialect struct{}

// DriverName returns "sqlite" for the modernc.org/sqlite driver.
func (d *SQLiteDialect) DriverName() string {
	return "sqlite"
}

// Placeholder returns "?" for all positions.
func (d *SQLiteDialect) Placeholder(position int) string {
	return "?"
}

// InitStatements returns SQLite PRAGMA statements. WAL lets the HTTP
// handlers read levels while a save is in progress.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) TimestampType() string {
	return "TIMESTAMP"
}

func (d *SQLiteDialect) Now() string {
	return "CURRENT_TIMESTAMP"
}
