package stage

import (
	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
	"github.com/zyedidia/generic/mapset"
)

// action indexes the per-action last-fired timestamps.
type action int

const (
	actionMove action = iota
	actionShoot
	actionSpecial

	actionCount
)

// Input is the held control state of the player.
type Input struct {
	DX, DY   int
	Shoot    bool
	Fireball bool
}

// Inventory is what the player carries.
type Inventory struct {
	Arrows    int
	Fireballs int
	Keys      int
}

// Entity is anything the stage tracks. Kind selects which fields matter:
// HP and MaxHP only for mortal kinds, Quantity only for pickups, Inventory
// only for the player, and the projectile state only for shots.
type Entity struct {
	ID   int64
	Kind Kind
	// Cell is the top-left cell of the footprint.
	Cell grid.Cell

	HP, MaxHP int
	Quantity  int
	Inventory Inventory

	last    [actionCount]int64
	removed bool

	player *playerState
	shot   *shotState
}

type playerState struct {
	input          Input
	lastLR, lastUD int
}

type shotState struct {
	owner     *Entity
	x, y      float64
	dx, dy    float64
	age       int
	exploding bool
	radius    float64
	hit       mapset.Set[int64]
}

// NewEntity returns an entity of kind k at c.
func NewEntity(k Kind, c grid.Cell) *Entity {
	e := &Entity{Kind: k, Cell: c}
	if k == KindPlayer {
		e.player = &playerState{lastLR: 1}
	}
	return e
}

// Size returns the footprint side in cells.
func (e *Entity) Size() int {
	if !e.Kind.valid() {
		return 1
	}
	return capabilities[e.Kind].size
}

// Cells returns every cell the entity covers, starting with Cell.
func (e *Entity) Cells() []grid.Cell {
	return footprint(e.Cell, e.Size())
}

func footprint(origin grid.Cell, size int) []grid.Cell {
	if size <= 1 {
		return []grid.Cell{origin}
	}
	cells := make([]grid.Cell, 0, size*size)
	for dr := 0; dr < size; dr++ {
		for dc := 0; dc < size; dc++ {
			cells = append(cells, origin.Add(dc, dr))
		}
	}
	return cells
}

// Center returns the footprint center in cell units.
func (e *Entity) Center() (x, y float64) {
	if e.shot != nil {
		return e.shot.x + 0.5, e.shot.y + 0.5
	}
	half := float64(e.Size()) / 2
	return float64(e.Cell.Col) + half, float64(e.Cell.Row) + half
}

// Removed reports whether the entity has left the stage.
func (e *Entity) Removed() bool {
	return e.removed
}

func (e *Entity) layer() layer {
	return capabilities[e.Kind].layer
}

// Position returns a projectile's continuous origin in cell units. For other
// kinds it is the cell origin.
func (e *Entity) Position() (x, y float64) {
	if e.shot != nil {
		return e.shot.x, e.shot.y
	}
	return float64(e.Cell.Col), float64(e.Cell.Row)
}

// Exploding reports whether a fireball is in its blast phase.
func (e *Entity) Exploding() bool {
	return e.shot != nil && e.shot.exploding
}

// Radius returns the current blast radius of an exploding fireball.
func (e *Entity) Radius() float64 {
	if e.shot == nil {
		return 0
	}
	return e.shot.radius
}

// Owner returns the actor that fired a projectile.
func (e *Entity) Owner() *Entity {
	if e.shot == nil {
		return nil
	}
	return e.shot.owner
}

// Heading returns the player's facing, the last non-zero input direction.
func (e *Entity) Heading() (dx, dy int) {
	if e.player == nil {
		return 0, 0
	}
	return e.player.lastLR, e.player.lastUD
}

// PlayerState is the part of the player that survives a level transition.
type PlayerState struct {
	HP, MaxHP int
	Inventory Inventory
}
