package gen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
	"github.com/lawnchairsociety/dragogauntlet/internal/logger"
)

// MinSide is the smallest grid side the pipeline accepts.
const MinSide = 16

// ErrGridTooSmall is returned for grids with a side below MinSide.
var ErrGridTooSmall = errors.New("grid too small")

// Cavern roughening applied on top of maze corridors.
const (
	cavernFraction = 0.08
	cavernMean     = 12
	cavernSigma    = 8
)

// populateOrder is the actor placement order.
var populateOrder = []byte{
	grid.Crate, grid.Melee, grid.Ranged, grid.Boss,
	grid.Health, grid.ArrowPickup, grid.FireballPickup,
}

// Generator produces the level sequence for one seed.
type Generator struct {
	cfg  config.GeneratorConfig
	seed int64
}

// NewGenerator creates a generator. The same seed always yields the same
// sequence of levels.
func NewGenerator(cfg config.GeneratorConfig, seed int64) *Generator {
	return &Generator{cfg: cfg, seed: seed}
}

// Seed returns the base seed.
func (gen *Generator) Seed() int64 {
	return gen.seed
}

// LevelSeed returns the seed used for a level index.
func (gen *Generator) LevelSeed(index int) int64 {
	return gen.seed + int64(index)
}

// Level builds level index. Level 0 is the first level.
func (gen *Generator) Level(index int) (*grid.Grid, error) {
	w, h := gen.cfg.Width, gen.cfg.Height
	if w < MinSide || h < MinSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrGridTooSmall, w, h)
	}

	rng := rand.New(rand.NewSource(gen.LevelSeed(index)))
	d := ForLevel(index)
	d.Trees = gen.cfg.TreeFraction

	var g *grid.Grid
	switch gen.cfg.Mode {
	case config.ModeRooms, "":
		g, _ = Rooms(rng, RoomParams{
			Width:         w - 2,
			Height:        h - 2,
			RoomSize:      gen.cfg.RoomSize,
			RoomSizeSigma: gen.cfg.RoomSizeSigma,
			NearLimit:     gen.cfg.NearLimit,
		})
	case config.ModeMaze:
		g = Maze(rng, w, h)
		Caverns(rng, g, cavernFraction, cavernMean, cavernSigma)
	case config.ModeRegions:
		g = Empty(w, h)
		Regions(rng, g, gen.cfg.RegionCount)
	default:
		return nil, fmt.Errorf("unknown generator mode %q", gen.cfg.Mode)
	}

	Water(rng, g, d.Water, gen.cfg.WaterMeanLength, gen.cfg.WaterSigma)
	Trees(rng, g, d.Trees)
	for _, kind := range populateOrder {
		Actors(rng, g, kind, d.fraction(kind))
	}

	spawn, _, err := SpawnAndExit(g)
	if err != nil {
		return nil, fmt.Errorf("level %d: %w", index, err)
	}

	// Water walks can leave sealed pockets in maze rock, and a maze level
	// must be fully connected, so maze mode always repairs.
	if gen.cfg.RepairReachability || gen.cfg.Mode == config.ModeMaze {
		if opened := RepairReachability(g, spawn); opened > 0 {
			logger.Info("Repaired level reachability", "level", index, "cells_opened", opened)
		}
	}

	logger.Debug("Generated level", "level", index, "mode", gen.cfg.Mode, "seed", gen.LevelSeed(index))
	return g, nil
}

func (d Densities) fraction(kind byte) float64 {
	switch kind {
	case grid.Crate:
		return d.Crates
	case grid.Melee:
		return d.Melee
	case grid.Ranged:
		return d.Ranged
	case grid.Boss:
		return d.Boss
	case grid.Health:
		return d.Health
	case grid.ArrowPickup:
		return d.Arrows
	case grid.FireballPickup:
		return d.Fireballs
	}
	return 0
}
