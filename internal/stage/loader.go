package stage

import (
	"fmt"

	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
)

// LoadProc materializes a procedural character grid. The player takes its
// hit points and inventory from carry when given, otherwise from the rules.
func (s *Stage) LoadProc(g *grid.Grid, carry *PlayerState) error {
	var err error
	g.Each(func(col, row int, ch byte) {
		if err != nil {
			return
		}
		k, ok := KindFromGlyph(ch)
		if !ok {
			if ch != grid.Floor && ch != grid.BossPart {
				err = fmt.Errorf("load: unknown glyph %q at %d,%d", ch, col, row)
			}
			return
		}
		e := s.Spawn(k, grid.C(col, row), carry)
		if perr := s.Place(e); perr != nil {
			err = fmt.Errorf("load: %w", perr)
		}
	})
	return err
}

// Spawn builds an entity of kind k at c with its starting stats. Pickup
// quantities are sampled from the stage rng.
func (s *Stage) Spawn(k Kind, c grid.Cell, carry *PlayerState) *Entity {
	e := NewEntity(k, c)
	switch k {
	case KindPlayer:
		pr := s.rules.Player
		e.HP, e.MaxHP = pr.HP, pr.HP
		e.Inventory = Inventory{Arrows: pr.StartArrows, Fireballs: pr.StartFireballs}
		if carry != nil {
			e.HP, e.MaxHP, e.Inventory = carry.HP, carry.MaxHP, carry.Inventory
		}
	case KindMelee, KindRanged, KindBoss:
		hp := s.enemyRules(k).HP
		e.HP, e.MaxHP = hp, hp
	case KindHealth:
		e.Quantity = s.sample(s.rules.Pickups.Health)
	case KindArrows:
		e.Quantity = s.sample(s.rules.Pickups.Arrows)
	case KindFireballs:
		e.Quantity = s.sample(s.rules.Pickups.Fireballs)
	case KindKey:
		e.Quantity = 1
	}
	return e
}

// sample draws uniformly from the inclusive range r.
func (s *Stage) sample(r [2]int) int {
	lo, hi := r[0], r[1]
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}
