// levelgen generates a level offline and prints it as ASCII, writes its
// JSON document, or saves it into the configured level store.
//
// Usage:
//
//	go run ./cmd/levelgen -mode maze -width 41 -height 41 -seed 7
//	go run ./cmd/levelgen -level 3 -json -out levels/L3.json
//	go run ./cmd/levelgen -level 0 -save -config data/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/database"
	"github.com/lawnchairsociety/dragogauntlet/internal/gen"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
	"github.com/lawnchairsociety/dragogauntlet/internal/stage"
)

func main() {
	configFile := flag.String("config", "data/config.yaml", "Path to config YAML file")
	mode := flag.String("mode", "", "Generator mode: rooms, maze or regions (default: config value)")
	width := flag.Int("width", 0, "Grid width in cells (default: config value)")
	height := flag.Int("height", 0, "Grid height in cells (default: config value)")
	seed := flag.Int64("seed", 1, "Run seed")
	index := flag.Int("level", 0, "Level index, drives difficulty and the level seed")
	asJSON := flag.Bool("json", false, "Emit the level document instead of ASCII")
	name := flag.String("name", "", "Document name (default: L<level>)")
	out := flag.String("out", "", "Output file (default: stdout)")
	save := flag.Bool("save", false, "Save the document into the configured level store")
	flag.Parse()

	if err := run(*configFile, options{
		mode: *mode, width: *width, height: *height, seed: *seed, index: *index,
		json: *asJSON, name: *name, out: *out, save: *save,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	mode          string
	width, height int
	seed          int64
	index         int
	json          bool
	name          string
	out           string
	save          bool
}

func run(configFile string, opts options) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if opts.mode != "" {
		cfg.Generator.Mode = opts.mode
	}
	if opts.width > 0 {
		cfg.Generator.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Generator.Height = opts.height
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.name == "" {
		opts.name = level.CampaignName(opts.index)
	}
	if err := level.ValidateName(opts.name); err != nil {
		return err
	}

	generator := gen.NewGenerator(cfg.Generator, opts.seed)
	g, err := generator.Level(opts.index)
	if err != nil {
		return err
	}

	if !opts.json && !opts.save {
		return emit(opts.out, []byte(g.String()+"\n"))
	}

	rng := rand.New(rand.NewSource(generator.LevelSeed(opts.index)))
	st := stage.New(cfg.Simulation, stage.Hooks{}, rng)
	if err := st.LoadProc(g, nil); err != nil {
		return err
	}
	doc := st.Document(opts.name)

	if opts.save {
		store, err := database.OpenStore(cfg.Storage)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(context.Background(), doc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %s to %s storage\n", doc.Name, cfg.Storage.Driver)
		if !opts.json {
			return nil
		}
	}

	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return emit(opts.out, append(data, '\n'))
}

func emit(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
