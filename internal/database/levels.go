package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
)

// LevelStore keeps one JSON document per row of the levels table.
type LevelStore struct {
	d *Database
}

// NewLevelStore returns a store over an open database. Closing the store
// closes the database.
func NewLevelStore(d *Database) *LevelStore {
	return &LevelStore{d: d}
}

// Save inserts or replaces the document stored under doc.Name.
func (s *LevelStore) Save(ctx context.Context, doc *level.Document) error {
	if err := level.ValidateName(doc.Name); err != nil {
		return err
	}
	body, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("encode level %s: %w", doc.Name, err)
	}

	q := s.d.qb.Upsert("levels", "name", []string{"body"})
	if _, err := s.d.db.ExecContext(ctx, q, doc.Name, string(body)); err != nil {
		return fmt.Errorf("save level %s: %w", doc.Name, err)
	}
	return nil
}

// Load reads a document by name.
func (s *LevelStore) Load(ctx context.Context, name string) (*level.Document, error) {
	if err := level.ValidateName(name); err != nil {
		return nil, err
	}

	var body string
	q := s.d.qb.Build("SELECT body FROM levels WHERE name = ?")
	err := s.d.db.QueryRowContext(ctx, q, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", level.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", name, err)
	}
	return level.Parse([]byte(body))
}

// ListAll returns every stored level name.
func (s *LevelStore) ListAll(ctx context.Context) ([]string, error) {
	rows, err := s.d.db.QueryContext(ctx, "SELECT name FROM levels ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("list levels: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// List returns the campaign level names in level order.
func (s *LevelStore) List(ctx context.Context) ([]string, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return level.Campaign(all), nil
}

// Close closes the underlying database.
func (s *LevelStore) Close() error {
	return s.d.Close()
}

// OpenStore opens the level store selected by the storage driver.
func OpenStore(cfg config.StorageConfig) (level.Store, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		fs, err := level.NewFileStore(cfg.LevelsDir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.DriverSQLite, config.DriverPostgres:
		d, err := OpenWithConfig(FromStorage(cfg))
		if err != nil {
			return nil, err
		}
		return NewLevelStore(d), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
