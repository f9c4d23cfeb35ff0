// migrate-levels copies every stored level from one level store to another,
// for example from the levels directory into PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-levels \
//	    -from file -levels-dir levels \
//	    -to postgres \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user drago \
//	    -pg-password drago \
//	    -pg-database dragogauntlet
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/database"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
)

func main() {
	from := flag.String("from", config.DriverFile, "Source driver: file, sqlite or postgres")
	to := flag.String("to", config.DriverPostgres, "Target driver: file, sqlite or postgres")
	levelsDir := flag.String("levels-dir", "levels", "Levels directory for the file driver")
	sqlitePath := flag.String("sqlite", "data/levels.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "drago", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "drago", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "dragogauntlet", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	if *from == *to {
		log.Fatalf("Source and target are both %q", *from)
	}

	base := config.StorageConfig{
		LevelsDir:  *levelsDir,
		SQLitePath: *sqlitePath,
		Postgres: config.PostgresConfig{
			Host:     *pgHost,
			Port:     *pgPort,
			User:     *pgUser,
			Password: *pgPassword,
			Database: *pgDatabase,
			SSLMode:  *pgSSLMode,
		},
	}

	log.Println("Level Migration Tool")
	log.Println("====================")

	srcCfg := base
	srcCfg.Driver = *from
	src, err := database.OpenStore(srcCfg)
	if err != nil {
		log.Fatalf("Failed to open source %s store: %v", *from, err)
	}
	defer src.Close()

	dstCfg := base
	dstCfg.Driver = *to
	dst, err := database.OpenStore(dstCfg)
	if err != nil {
		log.Fatalf("Failed to open target %s store: %v", *to, err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	n, err := migrate(context.Background(), src, dst, *dryRun, func(name string) {
		log.Printf("  %s", name)
	})
	if err != nil {
		log.Fatalf("Migration failed after %d levels: %v", n, err)
	}

	log.Println("====================")
	log.Printf("Migration complete! Levels copied: %d", n)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

// migrate copies every level in src to dst and returns how many were
// copied. progress is called once per level.
func migrate(ctx context.Context, src, dst level.Store, dryRun bool, progress func(name string)) (int, error) {
	names, err := src.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list source levels: %w", err)
	}

	copied := 0
	for _, name := range names {
		doc, err := src.Load(ctx, name)
		if err != nil {
			return copied, fmt.Errorf("load %s: %w", name, err)
		}
		if progress != nil {
			progress(name)
		}
		if !dryRun {
			if err := dst.Save(ctx, doc); err != nil {
				return copied, fmt.Errorf("save %s: %w", name, err)
			}
		}
		copied++
	}
	return copied, nil
}
