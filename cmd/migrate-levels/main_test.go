package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/database"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
)

func TestMigrateFileToSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src, err := level.NewFileStore(filepath.Join(dir, "levels"))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"L0", "L1", "draft"} {
		doc := level.NewDocument(name)
		doc.Terrain["0,0"] = &level.Record{Type: "Rock", Size: level.Point{X: 1, Y: 1}}
		if err := src.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
	}

	dst, err := database.OpenStore(config.StorageConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(dir, "levels.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()

	var seen []string
	n, err := migrate(ctx, src, dst, true, func(name string) { seen = append(seen, name) })
	if err != nil || n != 3 || len(seen) != 3 {
		t.Fatalf("dry run = %d, %v, seen %v", n, err, seen)
	}
	if _, err := dst.Load(ctx, "L0"); !errors.Is(err, level.ErrNotFound) {
		t.Fatalf("dry run wrote to target: %v", err)
	}

	n, err = migrate(ctx, src, dst, false, nil)
	if err != nil || n != 3 {
		t.Fatalf("migrate = %d, %v", n, err)
	}
	names, err := dst.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 {
		t.Errorf("target has %v", names)
	}
	doc, err := dst.Load(ctx, "draft")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Terrain["0,0"] == nil || doc.Terrain["0,0"].Type != "Rock" {
		t.Errorf("copied document = %+v", doc.Terrain)
	}
}
