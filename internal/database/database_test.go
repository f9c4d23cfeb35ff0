package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM levels").Scan(&count); err != nil {
		t.Errorf("Failed to query levels table: %v", err)
	}
	if _, ok := db.Dialect().(*SQLiteDialect); !ok {
		t.Errorf("Dialect() = %T, want *SQLiteDialect", db.Dialect())
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	nestedPath := filepath.Join(tmpDir, "nested", "dir", "test.db")

	db, err := Open(nestedPath)
	if err != nil {
		t.Fatalf("Failed to open database with nested path: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(nestedPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestOpenTwiceKeepsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := db.db.Exec("INSERT INTO levels (name, body) VALUES ('L0', '{}')"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	db.Close()

	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM levels").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d after reopen, want 1", count)
	}
}

func TestClose(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("Failed to close database: %v", err)
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM levels").Scan(&count); err == nil {
		t.Error("Expected error querying closed database")
	}
}
