package stage

import (
	"math"
	"sort"

	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
)

// blocksMover applies the pass-through matrix for terrain.
func blocksMover(mover, terrain *Entity) bool {
	caps := capabilities[terrain.Kind]
	if mover.Kind == KindCrate {
		return caps.blocksCrates
	}
	return caps.blocksFeet
}

// blockers returns every distinct entity that would stop mover from
// occupying cells, terrain first. The mover itself never blocks.
func (s *Stage) blockers(mover *Entity, cells []grid.Cell) []*Entity {
	var out []*Entity
	seen := make(map[*Entity]bool)
	add := func(e *Entity) {
		if e != nil && e != mover && !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	for _, c := range cells {
		if t := s.terrain[c]; t != nil && blocksMover(mover, t) {
			add(t)
		}
	}
	for _, c := range cells {
		add(s.actors[c])
	}
	return out
}

// QueryBlocking returns the first occupant that stops mover from occupying
// cells, or nil when the move is clear.
func (s *Stage) QueryBlocking(mover *Entity, cells []grid.Cell) *Entity {
	if b := s.blockers(mover, cells); len(b) > 0 {
		return b[0]
	}
	return nil
}

// QueryProjectile returns what a flying projectile hits at its snapped cell,
// or, for an exploding fireball, every actor whose center lies within the
// blast radius. The owner is never returned.
func (s *Stage) QueryProjectile(p *Entity) (blocker *Entity, victims []*Entity) {
	sh := p.shot
	if sh == nil {
		return nil, nil
	}

	if sh.exploding {
		px, py := p.Center()
		for _, a := range s.order {
			if a.removed || a == sh.owner {
				continue
			}
			ax, ay := a.Center()
			if math.Hypot(ax-px, ay-py) <= sh.radius {
				victims = append(victims, a)
			}
		}
		return nil, victims
	}

	c := grid.Nearest(sh.x, sh.y)
	if a := s.actors[c]; a != nil && a != sh.owner {
		return a, nil
	}
	if t := s.terrain[c]; t != nil && capabilities[t.Kind].blocksShots {
		return t, nil
	}
	return nil, nil
}

// walk moves e one cardinal step if nothing blocks it. Players open doors
// with keys and, like bosses, push crates. A crate is pushed only when it is
// the sole blocker. Reports whether e moved.
func (s *Stage) walk(e *Entity, dc, dr int) (bool, error) {
	if dc == 0 && dr == 0 {
		return false, nil
	}
	target := footprint(e.Cell.Add(dc, dr), e.Size())

	if e.Kind == KindPlayer {
		for _, c := range target {
			door := s.terrain[c]
			if door == nil || door.Kind != KindDoor || e.Inventory.Keys <= 0 {
				continue
			}
			if err := s.Remove(door); err != nil {
				return false, err
			}
			e.Inventory.Keys--
		}
	}

	b := s.blockers(e, target)
	if len(b) == 1 && b[0].Kind == KindCrate && (e.Kind == KindPlayer || e.Kind == KindBoss) {
		pushed, err := s.push(b[0], dc, dr)
		if err != nil || !pushed {
			return false, err
		}
		b = s.blockers(e, target)
	}
	if len(b) > 0 {
		return false, nil
	}

	if err := s.relocate(e, dc, dr); err != nil {
		return false, err
	}
	if e.Kind == KindPlayer {
		if err := s.enter(e); err != nil {
			return true, err
		}
	}
	return true, nil
}

// push slides a crate one step. A crate pushed into water sinks, taking the
// water with it.
func (s *Stage) push(crate *Entity, dc, dr int) (bool, error) {
	to := crate.Cell.Add(dc, dr)
	if s.QueryBlocking(crate, []grid.Cell{to}) != nil {
		return false, nil
	}
	if water := s.terrain[to]; water != nil && water.Kind == KindWater {
		if err := s.Remove(crate); err != nil {
			return false, err
		}
		if err := s.Remove(water); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := s.relocate(crate, dc, dr); err != nil {
		return false, err
	}
	return true, nil
}

// enter applies whatever the player finds in its new cell.
func (s *Stage) enter(p *Entity) error {
	t := s.terrain[p.Cell]
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindHealth:
		p.HP = min(p.HP+t.Quantity, p.MaxHP)
	case KindArrows:
		p.Inventory.Arrows += t.Quantity
	case KindFireballs:
		p.Inventory.Fireballs += t.Quantity
	case KindKey:
		p.Inventory.Keys += t.Quantity
	case KindExit:
		if !s.exited {
			s.exited = true
			s.addScore(s.rules.ExitScore)
			if s.hooks.OnExit != nil {
				s.hooks.OnExit()
			}
		}
		return nil
	default:
		return nil
	}
	return s.Remove(t)
}

// wound deals damage to a mortal entity. A killed enemy leaves the stage and
// scores; a killed player ends the game but stays in place.
func (s *Stage) wound(e *Entity, damage int) error {
	if !e.Kind.IsMortal() || e.removed {
		return nil
	}
	e.HP = max(e.HP-damage, 0)
	if e.HP > 0 {
		return nil
	}
	if e.Kind == KindPlayer {
		if !s.gameOver {
			s.gameOver = true
			if s.hooks.OnPlayerDeath != nil {
				s.hooks.OnPlayerDeath()
			}
		}
		return nil
	}
	if err := s.Remove(e); err != nil {
		return err
	}
	s.addScore(s.enemyRules(e.Kind).Score)
	return nil
}

func cellLess(a, b grid.Cell) bool {
	if a.Col != b.Col {
		return a.Col < b.Col
	}
	return a.Row < b.Row
}

func sortByCell(es []*Entity) {
	sort.Slice(es, func(i, j int) bool { return cellLess(es[i].Cell, es[j].Cell) })
}

func sortCells(cs []grid.Cell) {
	sort.Slice(cs, func(i, j int) bool { return cellLess(cs[i], cs[j]) })
}
