package stage

import (
	"math"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/zyedidia/generic/mapset"
)

func (s *Stage) enemyRules(k Kind) config.EnemyConfig {
	switch k {
	case KindMelee:
		return s.rules.Melee
	case KindRanged:
		return s.rules.Ranged
	case KindBoss:
		return s.rules.Boss
	}
	return config.EnemyConfig{}
}

// ready reports whether interval ticks have passed since a was last taken.
func (e *Entity) ready(a action, now int64, interval int) bool {
	return now-e.last[a] >= int64(interval)
}

// lastAct returns the most recent timestamp over all actions.
func (e *Entity) lastAct() int64 {
	t := e.last[0]
	for _, v := range e.last[1:] {
		t = max(t, v)
	}
	return t
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (s *Stage) stepPlayer(p *Entity) error {
	ctl := p.player
	if ctl == nil {
		return nil
	}
	in := ctl.input
	dx, dy := sign(float64(in.DX)), sign(float64(in.DY))
	if dx != 0 || dy != 0 {
		ctl.lastLR, ctl.lastUD = dx, dy
	}

	pr := s.rules.Player
	if (dx != 0 || dy != 0) && p.ready(actionMove, s.now, pr.MoveInterval) {
		p.last[actionMove] = s.now
		// Column axis first, then row axis.
		if _, err := s.walk(p, dx, 0); err != nil {
			return err
		}
		if _, err := s.walk(p, 0, dy); err != nil {
			return err
		}
	}

	if in.Shoot && p.Inventory.Arrows > 0 && p.ready(actionShoot, s.now, pr.ShotInterval) {
		p.last[actionShoot] = s.now
		p.Inventory.Arrows--
		if err := s.fire(p, KindArrow, float64(ctl.lastLR), float64(ctl.lastUD)); err != nil {
			return err
		}
	}

	if in.Fireball && p.Inventory.Fireballs > 0 && p.ready(actionSpecial, s.now, pr.FireballInterval) {
		p.last[actionSpecial] = s.now
		p.Inventory.Fireballs--
		if err := s.fire(p, KindFireball, float64(ctl.lastLR), float64(ctl.lastUD)); err != nil {
			return err
		}
	}
	return nil
}

// engaged returns the player and center offsets from e when the player is
// alive and within range.
func (s *Stage) engaged(e *Entity, r config.EnemyConfig) (pl *Entity, dx, dy float64, ok bool) {
	pl = s.player
	if pl == nil || pl.removed || s.gameOver {
		return nil, 0, 0, false
	}
	px, py := pl.Center()
	ex, ey := e.Center()
	dx, dy = px-ex, py-ey
	if math.Hypot(dx, dy) > r.Engage {
		return nil, 0, 0, false
	}
	return pl, dx, dy, true
}

// stepMelee drives melee enemies and bosses: strike when the player is in
// reach, otherwise close one cell on each axis.
func (s *Stage) stepMelee(e *Entity) error {
	r := s.enemyRules(e.Kind)
	if s.now-e.lastAct() < int64(r.Cooldown) {
		return nil
	}
	pl, dx, dy, ok := s.engaged(e, r)
	if !ok {
		return nil
	}

	if math.Hypot(dx, dy) <= r.Reach {
		e.last[actionSpecial] = s.now
		return s.wound(pl, r.Damage)
	}

	e.last[actionMove] = s.now
	if math.Abs(dx) >= 1 {
		if _, err := s.walk(e, sign(dx), 0); err != nil {
			return err
		}
	}
	if math.Abs(dy) >= 1 {
		if _, err := s.walk(e, 0, sign(dy)); err != nil {
			return err
		}
	}
	return nil
}

// stepRanged fires along a shared row or column, otherwise approaches on
// the longer axis and falls back to the other when blocked.
func (s *Stage) stepRanged(e *Entity) error {
	r := s.enemyRules(e.Kind)
	if s.now-e.lastAct() < int64(r.Cooldown) {
		return nil
	}
	_, dx, dy, ok := s.engaged(e, r)
	if !ok {
		return nil
	}

	switch {
	case math.Abs(dx) < 1:
		e.last[actionShoot] = s.now
		return s.fire(e, KindArrow, 0, float64(sign(dy)))
	case math.Abs(dy) < 1:
		e.last[actionShoot] = s.now
		return s.fire(e, KindArrow, float64(sign(dx)), 0)
	}

	e.last[actionMove] = s.now
	first, second := [2]int{sign(dx), 0}, [2]int{0, sign(dy)}
	if math.Abs(dy) > math.Abs(dx) {
		first, second = second, first
	}
	moved, err := s.walk(e, first[0], first[1])
	if err != nil || moved {
		return err
	}
	_, err = s.walk(e, second[0], second[1])
	return err
}

// fire launches a projectile from the shooter's cell along (hx, hy).
func (s *Stage) fire(owner *Entity, k Kind, hx, hy float64) error {
	n := math.Hypot(hx, hy)
	if n == 0 {
		return nil
	}
	p := NewEntity(k, owner.Cell)
	p.shot = &shotState{
		owner: owner,
		x:     float64(owner.Cell.Col),
		y:     float64(owner.Cell.Row),
		dx:    hx / n,
		dy:    hy / n,
		hit:   mapset.New[int64](),
	}
	return s.Place(p)
}
