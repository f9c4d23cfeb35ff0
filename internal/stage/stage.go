// Package stage holds the live world state of one level and advances it one
// logical tick at a time.
//
// Terrain and pickups live in one cell-keyed map, actors in another, and
// projectiles in a list. A boss is stored under all four of its cells. The
// stage is the only code that moves entities.
package stage

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
)

var (
	// ErrCellOccupied is returned when placing onto a taken cell of the same map.
	ErrCellOccupied = errors.New("cell already occupied")
	// ErrNotOccupant is returned when removing an entity that is not the
	// recorded occupant.
	ErrNotOccupant = errors.New("entity is not the occupant")
	// ErrDuplicatePlayer is returned when a second player is placed.
	ErrDuplicatePlayer = errors.New("stage already has a player")
	// ErrDuplicateExit is returned when a second exit is placed.
	ErrDuplicateExit = errors.New("stage already has an exit")
)

// Hooks are the callbacks a stage raises to its driver. Any may be nil.
type Hooks struct {
	OnScore       func(points int)
	OnExit        func()
	OnPlayerDeath func()
}

// Stage is the spatial index and simulation state of one level.
type Stage struct {
	rules config.SimulationConfig
	hooks Hooks
	rng   *rand.Rand

	terrain     map[grid.Cell]*Entity
	actors      map[grid.Cell]*Entity
	order       []*Entity
	projectiles []*Entity

	player *Entity
	exit   *Entity

	nextID   int64
	revision int64
	now      int64
	exited   bool
	gameOver bool
}

// New returns an empty stage. rng drives pickup quantities; a nil rng is
// seeded with 1.
func New(rules config.SimulationConfig, hooks Hooks, rng *rand.Rand) *Stage {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Stage{
		rules:   rules,
		hooks:   hooks,
		rng:     rng,
		terrain: make(map[grid.Cell]*Entity),
		actors:  make(map[grid.Cell]*Entity),
	}
}

// Rules returns the simulation parameters the stage runs with.
func (s *Stage) Rules() config.SimulationConfig {
	return s.rules
}

func (s *Stage) cellMap(e *Entity) map[grid.Cell]*Entity {
	if e.layer() == layerTerrain {
		return s.terrain
	}
	return s.actors
}

// Place inserts e under every cell it covers. Nothing is inserted when any
// of those cells is already taken in e's map.
func (s *Stage) Place(e *Entity) error {
	if !e.Kind.valid() {
		return fmt.Errorf("place: invalid kind %d", e.Kind)
	}
	if e.layer() == layerProjectile {
		s.admit(e)
		s.projectiles = append(s.projectiles, e)
		return nil
	}

	switch {
	case e.Kind == KindPlayer && s.player != nil && !s.player.removed:
		return ErrDuplicatePlayer
	case e.Kind == KindExit && s.exit != nil && !s.exit.removed:
		return ErrDuplicateExit
	}

	m := s.cellMap(e)
	cells := e.Cells()
	for _, c := range cells {
		if occ, ok := m[c]; ok {
			return fmt.Errorf("%w: %s at %s held by %s", ErrCellOccupied, e.Kind, c, occ.Kind)
		}
	}
	s.admit(e)
	for _, c := range cells {
		m[c] = e
	}
	if e.layer() == layerTerrain {
		s.revision++
	}

	switch e.Kind {
	case KindPlayer:
		s.player = e
	case KindExit:
		s.exit = e
	}
	if e.layer() == layerActor {
		s.order = append(s.order, e)
	}
	return nil
}

// admit marks e live and gives it an ID on first placement.
func (s *Stage) admit(e *Entity) {
	if e.ID == 0 {
		s.nextID++
		e.ID = s.nextID
	}
	e.removed = false
}

// Remove deletes e from its map. It fails, changing nothing, when any of
// e's cells is held by a different entity.
func (s *Stage) Remove(e *Entity) error {
	if e.layer() == layerProjectile {
		for i, p := range s.projectiles {
			if p == e {
				s.projectiles = append(s.projectiles[:i], s.projectiles[i+1:]...)
				e.removed = true
				return nil
			}
		}
		return fmt.Errorf("%w: %s %d not in flight", ErrNotOccupant, e.Kind, e.ID)
	}

	m := s.cellMap(e)
	cells := e.Cells()
	for _, c := range cells {
		if m[c] != e {
			return fmt.Errorf("%w: %s %d at %s", ErrNotOccupant, e.Kind, e.ID, c)
		}
	}
	for _, c := range cells {
		delete(m, c)
	}
	if e.layer() == layerTerrain {
		s.revision++
	}
	e.removed = true
	return nil
}

// relocate shifts e by (dc, dr) within its map. Overlap with e's own
// current cells is allowed.
func (s *Stage) relocate(e *Entity, dc, dr int) error {
	m := s.cellMap(e)
	from := e.Cells()
	for _, c := range from {
		if m[c] != e {
			return fmt.Errorf("%w: %s %d at %s", ErrNotOccupant, e.Kind, e.ID, c)
		}
	}
	to := footprint(e.Cell.Add(dc, dr), e.Size())
	for _, c := range to {
		if occ, ok := m[c]; ok && occ != e {
			return fmt.Errorf("%w: %s at %s held by %s", ErrCellOccupied, e.Kind, c, occ.Kind)
		}
	}
	for _, c := range from {
		delete(m, c)
	}
	for _, c := range to {
		m[c] = e
	}
	e.Cell = e.Cell.Add(dc, dr)
	return nil
}

// TerrainAt returns the terrain or pickup at c.
func (s *Stage) TerrainAt(c grid.Cell) *Entity {
	return s.terrain[c]
}

// ActorAt returns the actor covering c.
func (s *Stage) ActorAt(c grid.Cell) *Entity {
	return s.actors[c]
}

// Terrain returns all terrain entities in column-major cell order.
func (s *Stage) Terrain() []*Entity {
	out := make([]*Entity, 0, len(s.terrain))
	for _, e := range s.terrain {
		out = append(out, e)
	}
	sortByCell(out)
	return out
}

// Actors returns the live actors in insertion order, each boss once.
func (s *Stage) Actors() []*Entity {
	out := make([]*Entity, 0, len(s.order))
	for _, e := range s.order {
		if !e.removed {
			out = append(out, e)
		}
	}
	return out
}

// Projectiles returns the projectiles in flight.
func (s *Stage) Projectiles() []*Entity {
	out := make([]*Entity, len(s.projectiles))
	copy(out, s.projectiles)
	return out
}

// Player returns the player, or nil.
func (s *Stage) Player() *Entity {
	return s.player
}

// Exit returns the exit, or nil.
func (s *Stage) Exit() *Entity {
	return s.exit
}

// Revision counts terrain placements and removals. It changes whenever the
// terrain map does.
func (s *Stage) Revision() int64 {
	return s.revision
}

// Now returns the time of the last tick.
func (s *Stage) Now() int64 {
	return s.now
}

// GameOver reports whether the player has died.
func (s *Stage) GameOver() bool {
	return s.gameOver
}

// Exited reports whether the player has reached the exit.
func (s *Stage) Exited() bool {
	return s.exited
}

// SetInput replaces the player's held controls.
func (s *Stage) SetInput(in Input) {
	if s.player == nil || s.player.player == nil {
		return
	}
	s.player.player.input = in
}

// PlayerState snapshots what carries over to the next level.
func (s *Stage) PlayerState() *PlayerState {
	if s.player == nil {
		return nil
	}
	return &PlayerState{HP: s.player.HP, MaxHP: s.player.MaxHP, Inventory: s.player.Inventory}
}

// Tick advances the stage to time now: every projectile in flight order,
// then every actor in insertion order. Entities removed earlier in the same
// tick are skipped. A consistency failure aborts the tick and is returned.
func (s *Stage) Tick(now int64) error {
	if s.gameOver {
		return nil
	}
	s.now = now

	shots := make([]*Entity, len(s.projectiles))
	copy(shots, s.projectiles)
	for _, p := range shots {
		if p.removed {
			continue
		}
		if err := s.stepProjectile(p); err != nil {
			return fmt.Errorf("tick %d: %s %d: %w", now, p.Kind, p.ID, err)
		}
	}

	actors := make([]*Entity, len(s.order))
	copy(actors, s.order)
	for _, a := range actors {
		if a.removed || s.gameOver {
			continue
		}
		var err error
		switch a.Kind {
		case KindPlayer:
			err = s.stepPlayer(a)
		case KindMelee, KindBoss:
			err = s.stepMelee(a)
		case KindRanged:
			err = s.stepRanged(a)
		}
		if err != nil {
			return fmt.Errorf("tick %d: %s %d: %w", now, a.Kind, a.ID, err)
		}
	}

	live := s.order[:0]
	for _, a := range s.order {
		if !a.removed {
			live = append(live, a)
		}
	}
	s.order = live
	return nil
}

func (s *Stage) addScore(points int) {
	if points != 0 && s.hooks.OnScore != nil {
		s.hooks.OnScore(points)
	}
}
