package stage

// stepProjectile advances one shot by one tick.
func (s *Stage) stepProjectile(p *Entity) error {
	sh := p.shot
	pr := s.rules.Projectile

	sh.age++
	if sh.age > pr.MaxFlight {
		return s.Remove(p)
	}

	if !sh.exploding {
		sh.x += sh.dx * pr.Speed
		sh.y += sh.dy * pr.Speed

		blocker, _ := s.QueryProjectile(p)
		if blocker == nil {
			return nil
		}
		if p.Kind == KindArrow {
			if err := s.wound(blocker, s.arrowDamage(sh.owner)); err != nil {
				return err
			}
			return s.Remove(p)
		}
		sh.exploding = true
		sh.radius = pr.BlastStart
	}

	return s.explode(p)
}

// explode applies one tick of fireball splash, then grows the blast. Each
// victim is hit at most once over the whole explosion.
func (s *Stage) explode(p *Entity) error {
	sh := p.shot
	pr := s.rules.Projectile

	_, victims := s.QueryProjectile(p)
	for _, v := range victims {
		if sh.hit.Has(v.ID) || v.removed {
			continue
		}
		sh.hit.Put(v.ID)
		switch {
		case v.Kind == KindCrate:
			if err := s.Remove(v); err != nil {
				return err
			}
		case v.Kind.IsMortal():
			if err := s.wound(v, pr.FireballDamage); err != nil {
				return err
			}
		}
	}

	sh.radius += pr.BlastGrowth
	if sh.radius > pr.BlastCap {
		return s.Remove(p)
	}
	return nil
}

// arrowDamage is the player's arrow damage or, for an enemy archer, its
// own strike damage.
func (s *Stage) arrowDamage(owner *Entity) int {
	if owner != nil && owner.Kind.IsEnemy() {
		return s.enemyRules(owner.Kind).Damage
	}
	return s.rules.Projectile.ArrowDamage
}
