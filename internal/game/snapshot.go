package game

import (
	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
)

// Snapshot is the renderer's view of one tick. Positions are in pixels.
type Snapshot struct {
	Level    int    `json:"level"`
	Name     string `json:"name"`
	Tick     int64  `json:"tick"`
	Score    int    `json:"score"`
	GameOver bool   `json:"game_over"`
	// Revision changes whenever the terrain does.
	Revision int64 `json:"revision"`

	Player      PlayerView       `json:"player"`
	Actors      []ActorView      `json:"actors"`
	Projectiles []ProjectileView `json:"projectiles"`
	// Explored holds the cell keys the player has seen on this level.
	Explored []string `json:"explored"`
}

// PlayerView is the player's position, facing, and carried state.
type PlayerView struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Heading   [2]int `json:"heading"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"maxhp"`
	Arrows    int    `json:"arrows"`
	Fireballs int    `json:"fireballs"`
	Keys      int    `json:"keys"`
}

// ActorView is one live actor.
type ActorView struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Size  int    `json:"size"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxhp"`
}

// ProjectileView is one projectile in flight or exploding.
type ProjectileView struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Exploding bool    `json:"exploding"`
	Radius    float64 `json:"radius"`
}

// snapshot must be called with g.mu held.
func (g *Game) snapshot() *Snapshot {
	snap := &Snapshot{
		Level:    g.index,
		Name:     g.name,
		Tick:     g.levelTick,
		Score:    g.score,
		GameOver: g.over,
	}
	if g.stage == nil {
		return snap
	}
	size := g.cfg.Simulation.GridSize
	snap.Revision = g.stage.Revision()

	if p := g.stage.Player(); p != nil {
		x, y := grid.ToPixel(p.Cell, size)
		dx, dy := p.Heading()
		snap.Player = PlayerView{
			X: x, Y: y,
			Heading:   [2]int{dx, dy},
			HP:        p.HP,
			MaxHP:     p.MaxHP,
			Arrows:    p.Inventory.Arrows,
			Fireballs: p.Inventory.Fireballs,
			Keys:      p.Inventory.Keys,
		}
	}

	for _, a := range g.stage.Actors() {
		x, y := grid.ToPixel(a.Cell, size)
		v := ActorView{ID: a.ID, Type: a.Kind.String(), X: x, Y: y, Size: a.Size() * size}
		if a.Kind.IsMortal() {
			v.HP, v.MaxHP = a.HP, a.MaxHP
		}
		snap.Actors = append(snap.Actors, v)
	}

	px := float64(size)
	for _, p := range g.stage.Projectiles() {
		x, y := p.Position()
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			ID:        p.ID,
			Type:      p.Kind.String(),
			X:         x * px,
			Y:         y * px,
			Exploding: p.Exploding(),
			Radius:    p.Radius() * px,
		})
	}

	cells := g.explored.Cells()
	snap.Explored = make([]string, len(cells))
	for i, c := range cells {
		snap.Explored[i] = c.Key()
	}
	return snap
}
