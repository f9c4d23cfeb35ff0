package stage

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
)

type recorder struct {
	score  int
	exits  int
	deaths int
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnScore:       func(p int) { r.score += p },
		OnExit:        func() { r.exits++ },
		OnPlayerDeath: func() { r.deaths++ },
	}
}

func loadWith(t *testing.T, rules config.SimulationConfig, hooks Hooks, rows ...string) *Stage {
	t.Helper()
	g, err := grid.Parse(rows)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	s := New(rules, hooks, rand.New(rand.NewSource(1)))
	if err := s.LoadProc(g, nil); err != nil {
		t.Fatalf("LoadProc failed: %v", err)
	}
	return s
}

func load(t *testing.T, rows ...string) *Stage {
	t.Helper()
	return loadWith(t, config.DefaultSimulationConfig(), Hooks{}, rows...)
}

// run ticks the stage from .. to inclusive.
func run(t *testing.T, s *Stage, from, to int64) {
	t.Helper()
	for now := from; now <= to; now++ {
		if err := s.Tick(now); err != nil {
			t.Fatalf("Tick(%d) failed: %v", now, err)
		}
	}
}

func TestPlaceRejectsDoubleOccupancy(t *testing.T) {
	s := New(config.DefaultSimulationConfig(), Hooks{}, nil)
	c := grid.C(1, 1)

	if err := s.Place(NewEntity(KindRock, c)); err != nil {
		t.Fatalf("Place rock failed: %v", err)
	}
	if err := s.Place(NewEntity(KindWater, c)); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("second terrain err = %v, want ErrCellOccupied", err)
	}
	if err := s.Place(NewEntity(KindMelee, c)); err != nil {
		t.Errorf("actor over terrain should be allowed: %v", err)
	}
	if err := s.Place(NewEntity(KindCrate, c)); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("second actor err = %v, want ErrCellOccupied", err)
	}

	boss := NewEntity(KindBoss, grid.C(0, 0))
	if err := s.Place(boss); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("overlapping boss err = %v, want ErrCellOccupied", err)
	}
	for _, cell := range []grid.Cell{{Col: 0, Row: 0}, {Col: 1, Row: 0}, {Col: 0, Row: 1}} {
		if s.ActorAt(cell) != nil {
			t.Errorf("failed boss placement left a partial entry at %v", cell)
		}
	}
}

func TestSinglePlayerAndExit(t *testing.T) {
	s := New(config.DefaultSimulationConfig(), Hooks{}, nil)
	if err := s.Place(NewEntity(KindPlayer, grid.C(1, 1))); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(NewEntity(KindPlayer, grid.C(2, 1))); !errors.Is(err, ErrDuplicatePlayer) {
		t.Errorf("err = %v, want ErrDuplicatePlayer", err)
	}
	if err := s.Place(NewEntity(KindExit, grid.C(3, 1))); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(NewEntity(KindExit, grid.C(4, 1))); !errors.Is(err, ErrDuplicateExit) {
		t.Errorf("err = %v, want ErrDuplicateExit", err)
	}
}

func TestRejectedPlaceLeavesEntityUntouched(t *testing.T) {
	s := New(config.DefaultSimulationConfig(), Hooks{}, nil)
	if err := s.Place(NewEntity(KindPlayer, grid.C(1, 1))); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(NewEntity(KindMelee, grid.C(3, 1))); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		e    *Entity
		want error
	}{
		{"duplicate player", NewEntity(KindPlayer, grid.C(2, 1)), ErrDuplicatePlayer},
		{"occupied cell", NewEntity(KindCrate, grid.C(3, 1)), ErrCellOccupied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Place(tt.e); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.e.ID != 0 {
				t.Errorf("rejected entity got ID %d", tt.e.ID)
			}
		})
	}

	removed := NewEntity(KindCrate, grid.C(4, 1))
	if err := s.Place(removed); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(removed); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(NewEntity(KindMelee, grid.C(4, 1))); err != nil {
		t.Fatal(err)
	}
	id := removed.ID
	if err := s.Place(removed); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("err = %v, want ErrCellOccupied", err)
	}
	if !removed.Removed() || removed.ID != id {
		t.Errorf("rejected re-place changed the entity: removed %v, id %d", removed.Removed(), removed.ID)
	}
}

func TestNilRngIsReproducible(t *testing.T) {
	g, err := grid.Parse([]string{
		"RRRRRRRR",
		"RPHOFHOR",
		"RRRRRRRR",
	})
	if err != nil {
		t.Fatal(err)
	}

	quantities := func() []int {
		s := New(config.DefaultSimulationConfig(), Hooks{}, nil)
		if err := s.LoadProc(g, nil); err != nil {
			t.Fatalf("LoadProc failed: %v", err)
		}
		var out []int
		for _, e := range s.Terrain() {
			if e.Kind.IsPickup() {
				out = append(out, e.Quantity)
			}
		}
		return out
	}

	a, b := quantities(), quantities()
	if len(a) != 5 || len(a) != len(b) {
		t.Fatalf("pickups = %d and %d, want 5", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("pickup %d quantity = %d and %d", i, a[i], b[i])
		}
	}
}

func TestRemoveMismatch(t *testing.T) {
	s := New(config.DefaultSimulationConfig(), Hooks{}, nil)
	a := NewEntity(KindMelee, grid.C(2, 2))
	b := NewEntity(KindMelee, grid.C(2, 2))

	if err := s.Remove(a); !errors.Is(err, ErrNotOccupant) {
		t.Errorf("remove unplaced err = %v, want ErrNotOccupant", err)
	}
	if err := s.Place(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(b); !errors.Is(err, ErrNotOccupant) {
		t.Errorf("remove impostor err = %v, want ErrNotOccupant", err)
	}
	if s.ActorAt(grid.C(2, 2)) != a {
		t.Error("failed remove changed the occupant")
	}
	if err := s.Remove(a); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := s.Remove(a); !errors.Is(err, ErrNotOccupant) {
		t.Errorf("double remove err = %v, want ErrNotOccupant", err)
	}
}

func TestBossComposite(t *testing.T) {
	s := New(config.DefaultSimulationConfig(), Hooks{}, nil)
	boss := s.Spawn(KindBoss, grid.C(2, 2), nil)
	if err := s.Place(boss); err != nil {
		t.Fatal(err)
	}

	cells := boss.Cells()
	if len(cells) != 4 {
		t.Fatalf("boss covers %d cells, want 4", len(cells))
	}
	for _, c := range cells {
		if s.ActorAt(c) != boss {
			t.Errorf("ActorAt(%v) does not resolve to the boss", c)
		}
	}
	if n := len(s.Actors()); n != 1 {
		t.Errorf("Actors() = %d entries, want 1", n)
	}
	if boss.HP != 12 {
		t.Errorf("boss HP = %d, want 12", boss.HP)
	}

	if err := s.Remove(boss); err != nil {
		t.Fatal(err)
	}
	for _, c := range cells {
		if s.ActorAt(c) != nil {
			t.Errorf("cell %v still holds the boss", c)
		}
	}
}

func TestBossApproachesAndStrikes(t *testing.T) {
	var rec recorder
	s := loadWith(t, config.DefaultSimulationConfig(), rec.hooks(),
		"RRRRRRRRRRR",
		"RP      BbR",
		"R       bbR",
		"RRRRRRRRRRR",
	)
	boss := s.ActorAt(grid.C(8, 1))
	p := s.Player()

	run(t, s, 1, 19)
	if boss.Cell != grid.C(8, 1) {
		t.Fatalf("boss moved before its first cooldown: %v", boss.Cell)
	}
	run(t, s, 20, 20)
	if boss.Cell != grid.C(7, 1) {
		t.Fatalf("boss at %v after one cooldown, want 7,1", boss.Cell)
	}
	for _, c := range []grid.Cell{{Col: 9, Row: 1}, {Col: 9, Row: 2}} {
		if s.ActorAt(c) != nil {
			t.Errorf("vacated cell %v still holds the boss", c)
		}
	}

	run(t, s, 21, 139)
	if boss.Cell != grid.C(2, 1) {
		t.Fatalf("boss at %v, want 2,1", boss.Cell)
	}
	if p.HP != 10 {
		t.Fatalf("player hit before the boss was in reach: HP %d", p.HP)
	}
	for _, c := range boss.Cells() {
		if s.ActorAt(c) != boss {
			t.Errorf("ActorAt(%v) does not resolve to the boss", c)
		}
	}
	if n := len(s.Actors()); n != 2 {
		t.Errorf("Actors() = %d entries, want 2", n)
	}

	tests := []struct {
		tick int64
		hp   int
	}{
		{140, 7},
		{159, 7},
		{160, 4},
		{180, 1},
		{200, 0},
	}
	now := int64(140)
	for _, tt := range tests {
		run(t, s, now, tt.tick)
		now = tt.tick + 1
		if p.HP != tt.hp {
			t.Errorf("HP at tick %d = %d, want %d", tt.tick, p.HP, tt.hp)
		}
	}
	if !s.GameOver() || rec.deaths != 1 {
		t.Errorf("GameOver = %v, deaths = %d", s.GameOver(), rec.deaths)
	}
}

func TestBossPushesLoneCrate(t *testing.T) {
	s := load(t,
		"RRRRRRRRRRRR",
		"RP      CBbR",
		"R        bbR",
		"RRRRRRRRRRRR",
	)
	crate := s.ActorAt(grid.C(8, 1))
	boss := s.ActorAt(grid.C(9, 1))

	run(t, s, 1, 20)
	if crate.Cell != grid.C(7, 1) || s.ActorAt(grid.C(7, 1)) != crate {
		t.Errorf("crate at %v, want 7,1", crate.Cell)
	}
	if boss.Cell != grid.C(8, 1) {
		t.Errorf("boss at %v, want 8,1", boss.Cell)
	}
}

func TestBossBlockedByCrateAndAnotherOccupant(t *testing.T) {
	tests := []struct {
		name string
		row2 string
	}{
		{"second crate", "R       CbbR"},
		{"rock", "R       RbbR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := load(t,
				"RRRRRRRRRRRR",
				"RP      CBbR",
				tt.row2,
				"RRRRRRRRRRRR",
			)
			crate := s.ActorAt(grid.C(8, 1))
			boss := s.ActorAt(grid.C(9, 1))

			run(t, s, 1, 100)
			if boss.Cell != grid.C(9, 1) {
				t.Errorf("boss at %v, want 9,1", boss.Cell)
			}
			if crate.Cell != grid.C(8, 1) {
				t.Errorf("crate at %v, want 8,1", crate.Cell)
			}
		})
	}
}

func TestCrateSinksInWater(t *testing.T) {
	s := load(t,
		"RRRRRR",
		"RPCW R",
		"RRRRRR",
	)
	crate := s.ActorAt(grid.C(2, 1))
	s.SetInput(Input{DX: 1})
	run(t, s, 1, 4)

	if !crate.Removed() {
		t.Error("crate should have sunk")
	}
	if s.ActorAt(grid.C(3, 1)) != nil {
		t.Error("crate still in the actor map")
	}
	if s.TerrainAt(grid.C(3, 1)) != nil {
		t.Error("water should be gone")
	}
	if got := s.Player().Cell; got != grid.C(2, 1) {
		t.Errorf("player at %v, want 2,1", got)
	}
	for _, a := range s.Actors() {
		if a.Kind == KindCrate {
			t.Error("crate listed in Actors()")
		}
	}
}

func TestBlockedPushRevertsPusher(t *testing.T) {
	s := load(t,
		"RRRRR",
		"RPCRR",
		"RRRRR",
	)
	s.SetInput(Input{DX: 1})
	run(t, s, 1, 12)

	if got := s.Player().Cell; got != grid.C(1, 1) {
		t.Errorf("player at %v, want 1,1", got)
	}
	if s.ActorAt(grid.C(2, 1)).Kind != KindCrate {
		t.Error("crate moved into rock")
	}
}

func TestCratePassesOverPickup(t *testing.T) {
	s := load(t,
		"RRRRRR",
		"RPCH R",
		"RRRRRR",
	)
	s.SetInput(Input{DX: 1})
	run(t, s, 1, 4)

	if a := s.ActorAt(grid.C(3, 1)); a == nil || a.Kind != KindCrate {
		t.Fatal("crate should sit on the pickup cell")
	}
	if s.TerrainAt(grid.C(3, 1)) == nil {
		t.Error("pickup under crate should survive")
	}
}

func TestMeleeDamageCadence(t *testing.T) {
	var rec recorder
	s := loadWith(t, config.DefaultSimulationConfig(), rec.hooks(),
		"RRRRR",
		"RPS R",
		"RRRRR",
	)
	p := s.Player()

	run(t, s, 1, 14)
	if p.HP != 10 {
		t.Fatalf("HP before first cooldown = %d, want 10", p.HP)
	}
	run(t, s, 15, 15)
	if p.HP != 9 {
		t.Fatalf("HP at tick 15 = %d, want 9", p.HP)
	}
	run(t, s, 16, 45)
	if p.HP != 7 {
		t.Fatalf("HP at tick 45 = %d, want 7", p.HP)
	}

	run(t, s, 46, 400)
	if p.HP != 0 {
		t.Errorf("HP = %d, want 0", p.HP)
	}
	if !s.GameOver() || rec.deaths != 1 {
		t.Errorf("GameOver = %v, deaths = %d", s.GameOver(), rec.deaths)
	}
	if s.ActorAt(grid.C(1, 1)) != p {
		t.Error("dead player should stay on the stage")
	}
}

func TestMeleeApproaches(t *testing.T) {
	s := load(t,
		"RRRRRRRR",
		"RP    SR",
		"RRRRRRRR",
	)
	m := s.ActorAt(grid.C(6, 1))

	run(t, s, 1, 15)
	if m.Cell != grid.C(5, 1) {
		t.Fatalf("melee at %v after one cooldown, want 5,1", m.Cell)
	}
	run(t, s, 16, 60)
	if m.Cell != grid.C(2, 1) {
		t.Fatalf("melee at %v, want 2,1", m.Cell)
	}
	if s.Player().HP != 10 {
		t.Fatalf("player hit before reach")
	}
	run(t, s, 61, 75)
	if s.Player().HP != 9 {
		t.Errorf("HP = %d, want 9", s.Player().HP)
	}
}

func TestMeleeIgnoresDistantPlayer(t *testing.T) {
	s := load(t,
		"RRRRRRRRRRRRR",
		"RP         SR",
		"RRRRRRRRRRRRR",
	)
	m := s.ActorAt(grid.C(11, 1))
	run(t, s, 1, 60)
	if m.Cell != grid.C(11, 1) {
		t.Errorf("melee beyond engage range moved to %v", m.Cell)
	}
}

func TestRangedFiresWhenAligned(t *testing.T) {
	s := load(t,
		"RRRRRRRR",
		"RP    AR",
		"RRRRRRRR",
	)
	ranged := s.ActorAt(grid.C(6, 1))

	run(t, s, 1, 30)
	shots := s.Projectiles()
	if len(shots) != 1 || shots[0].Kind != KindArrow || shots[0].Owner() != ranged {
		t.Fatalf("projectiles after first cooldown = %v", shots)
	}
	run(t, s, 31, 50)
	if s.Player().HP != 9 {
		t.Errorf("HP = %d, want 9", s.Player().HP)
	}
}

func TestRangedArrowDealsShooterDamage(t *testing.T) {
	rules := config.DefaultSimulationConfig()
	rules.Ranged.Damage = 2
	s := loadWith(t, rules, Hooks{},
		"RRRRRRRR",
		"RP    AR",
		"RRRRRRRR",
	)

	run(t, s, 1, 50)
	if s.Player().HP != 8 {
		t.Errorf("HP = %d, want 8", s.Player().HP)
	}
}

func TestRangedApproachesOnLongerAxis(t *testing.T) {
	s := load(t,
		"RRRRRRRRR",
		"RP      R",
		"R       R",
		"R      AR",
		"RRRRRRRRR",
	)
	a := s.ActorAt(grid.C(7, 3))
	run(t, s, 1, 30)
	if a.Cell != grid.C(6, 3) {
		t.Errorf("ranged at %v, want 6,3", a.Cell)
	}
}

func TestArrowBlockedByDoor(t *testing.T) {
	s := load(t,
		"RRRRRR",
		"RP DRR",
		"RRRRRR",
	)
	p := s.Player()
	door := s.TerrainAt(grid.C(3, 1))

	s.SetInput(Input{Shoot: true})
	run(t, s, 1, 10)
	s.SetInput(Input{})
	if len(s.Projectiles()) != 1 {
		t.Fatalf("expected one arrow in flight, got %d", len(s.Projectiles()))
	}
	if p.Inventory.Arrows != 9 {
		t.Errorf("arrows = %d, want 9", p.Inventory.Arrows)
	}

	run(t, s, 11, 25)
	if n := len(s.Projectiles()); n != 0 {
		t.Errorf("arrow should be removed on the door, %d in flight", n)
	}
	if s.TerrainAt(grid.C(3, 1)) != door || door.Removed() {
		t.Error("arrow must not consume the door")
	}
}

func TestKeyOpensDoor(t *testing.T) {
	s := load(t,
		"RRRRRR",
		"RPKD R",
		"RRRRRR",
	)
	p := s.Player()
	s.SetInput(Input{DX: 1})

	run(t, s, 1, 4)
	if p.Inventory.Keys != 1 {
		t.Fatalf("keys = %d after pickup, want 1", p.Inventory.Keys)
	}
	if s.TerrainAt(grid.C(2, 1)) != nil {
		t.Error("key pickup not consumed")
	}

	run(t, s, 5, 8)
	if p.Inventory.Keys != 0 {
		t.Errorf("keys = %d after door, want 0", p.Inventory.Keys)
	}
	if s.TerrainAt(grid.C(3, 1)) != nil {
		t.Error("door should be removed")
	}
	if p.Cell != grid.C(3, 1) {
		t.Errorf("player at %v, want 3,1", p.Cell)
	}
}

func TestDoorWithoutKeyBlocks(t *testing.T) {
	s := load(t,
		"RRRRR",
		"RPD R",
		"RRRRR",
	)
	s.SetInput(Input{DX: 1})
	run(t, s, 1, 12)
	if s.Player().Cell != grid.C(1, 1) {
		t.Errorf("player passed a locked door")
	}
	if s.TerrainAt(grid.C(2, 1)) == nil {
		t.Error("door removed without a key")
	}
}

func TestFireballExplosion(t *testing.T) {
	rules := config.DefaultSimulationConfig()
	rules.Boss.Engage = 0
	var rec recorder
	s := loadWith(t, rules, rec.hooks(),
		"RRRRRRRR",
		"RPR    R",
		"R Bb   R",
		"RCbb   R",
		"RRRRRRRR",
	)
	p := s.Player()
	boss := s.ActorAt(grid.C(2, 2))
	crate := s.ActorAt(grid.C(1, 3))

	s.SetInput(Input{Fireball: true})
	run(t, s, 1, 20)
	if p.Inventory.Fireballs != 0 || len(s.Projectiles()) != 1 {
		t.Fatalf("fireball not launched: fireballs=%d in flight=%d", p.Inventory.Fireballs, len(s.Projectiles()))
	}
	fb := s.Projectiles()[0]

	run(t, s, 21, 22)
	if !fb.Exploding() {
		t.Fatal("fireball should explode on the rock")
	}

	run(t, s, 23, 29)
	if fb.Removed() {
		t.Fatal("fireball removed before the blast cap")
	}
	if fb.Radius() <= 2 {
		t.Errorf("radius = %v, want growth past 2", fb.Radius())
	}

	run(t, s, 30, 40)
	if !fb.Removed() || len(s.Projectiles()) != 0 {
		t.Error("fireball should be gone after the blast cap")
	}
	if boss.HP != 9 {
		t.Errorf("boss HP = %d, want exactly one splash hit (9)", boss.HP)
	}
	if !crate.Removed() {
		t.Error("blast should destroy the crate")
	}
	if p.HP != 10 {
		t.Errorf("owner took splash damage: HP %d", p.HP)
	}
}

func TestProjectileFlightCap(t *testing.T) {
	rules := config.DefaultSimulationConfig()
	rules.Projectile.MaxFlight = 5
	s := loadWith(t, rules, Hooks{},
		"RRRRRRRRRRRR",
		"RP         R",
		"RRRRRRRRRRRR",
	)
	s.SetInput(Input{Shoot: true})
	run(t, s, 1, 10)
	s.SetInput(Input{})

	run(t, s, 11, 15)
	if len(s.Projectiles()) != 1 {
		t.Fatal("arrow should still be flying")
	}
	run(t, s, 16, 16)
	if len(s.Projectiles()) != 0 {
		t.Error("arrow should expire after its flight cap")
	}
}

func TestArrowKillsEnemyAndScores(t *testing.T) {
	rules := config.DefaultSimulationConfig()
	rules.Ranged.Engage = 0
	var rec recorder
	s := loadWith(t, rules, rec.hooks(),
		"RRRRRR",
		"RP A R",
		"RRRRRR",
	)
	ranged := s.ActorAt(grid.C(3, 1))
	s.SetInput(Input{Shoot: true})
	run(t, s, 1, 60)

	if !ranged.Removed() {
		t.Fatalf("ranged enemy HP = %d, want dead", ranged.HP)
	}
	if rec.score != 15 {
		t.Errorf("score = %d, want 15", rec.score)
	}
}

func TestExitFiresOnce(t *testing.T) {
	var rec recorder
	s := loadWith(t, config.DefaultSimulationConfig(), rec.hooks(),
		"RRRRR",
		"RPE R",
		"RRRRR",
	)
	s.SetInput(Input{DX: 1})
	run(t, s, 1, 4)
	if rec.exits != 1 || rec.score != 50 {
		t.Fatalf("exits = %d, score = %d", rec.exits, rec.score)
	}
	s.SetInput(Input{DX: 1})
	run(t, s, 5, 8)
	s.SetInput(Input{DX: -1})
	run(t, s, 9, 16)
	if rec.exits != 1 {
		t.Errorf("OnExit called %d times, want 1", rec.exits)
	}
	if !s.Exited() {
		t.Error("Exited() = false")
	}
}

func TestHealthPickupClamps(t *testing.T) {
	g, _ := grid.Parse([]string{
		"RRRRR",
		"RPHHR",
		"RRRRR",
	})
	s := New(config.DefaultSimulationConfig(), Hooks{}, rand.New(rand.NewSource(4)))
	carry := &PlayerState{HP: 9, MaxHP: 10, Inventory: Inventory{Arrows: 2, Keys: 1}}
	if err := s.LoadProc(g, carry); err != nil {
		t.Fatal(err)
	}
	p := s.Player()
	if p.Inventory.Arrows != 2 || p.Inventory.Keys != 1 {
		t.Errorf("carry not applied: %+v", p.Inventory)
	}

	s.SetInput(Input{DX: 1})
	run(t, s, 1, 8)
	if p.HP != 10 {
		t.Errorf("HP = %d, want clamp at 10", p.HP)
	}
	if s.TerrainAt(grid.C(2, 1)) != nil || s.TerrainAt(grid.C(3, 1)) != nil {
		t.Error("health pickups not consumed")
	}
}

func TestHeadingPersists(t *testing.T) {
	s := load(t,
		"RRRRR",
		"R   R",
		"R P R",
		"R   R",
		"RRRRR",
	)
	p := s.Player()
	if dx, dy := p.Heading(); dx != 1 || dy != 0 {
		t.Errorf("initial heading = %d,%d, want 1,0", dx, dy)
	}
	s.SetInput(Input{DY: -1})
	run(t, s, 1, 1)
	s.SetInput(Input{})
	run(t, s, 2, 2)
	if dx, dy := p.Heading(); dx != 0 || dy != -1 {
		t.Errorf("heading = %d,%d, want 0,-1", dx, dy)
	}
}

func TestLoadProcUnknownGlyph(t *testing.T) {
	g, _ := grid.Parse([]string{"RZR"})
	s := New(config.DefaultSimulationConfig(), Hooks{}, nil)
	if err := s.LoadProc(g, nil); err == nil {
		t.Error("expected error for unknown glyph")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s1 := load(t,
		"RRRRRRRRRR",
		"RPKHOF  TR",
		"R C W DSAR",
		"R  Bb   ER",
		"R  bb    R",
		"RRRRRRRRRR",
	)
	d1 := s1.Document("L3")

	if rec := d1.Actors["3,3"]; rec == nil || rec.Type != "Boss" || rec.Size != (level.Point{X: 64, Y: 64}) {
		t.Fatalf("boss record = %+v", rec)
	}
	for _, k := range []string{"4,3", "3,4", "4,4"} {
		if rec, ok := d1.Actors[k]; !ok || rec != nil {
			t.Errorf("boss secondary %s = %v, %v; want null entry", k, rec, ok)
		}
	}
	if rec := d1.Actors["7,2"]; rec == nil || rec.Pos != (level.Point{X: 224, Y: 64}) {
		t.Errorf("melee record = %+v", rec)
	}

	b1, err := d1.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := level.Parse(b1)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	s2 := New(config.DefaultSimulationConfig(), Hooks{}, rand.New(rand.NewSource(99)))
	if err := s2.LoadDocument(parsed, nil); err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	b2, err := s2.Document("L3").Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if string(b1) != string(b2) {
		t.Errorf("round trip changed the document\nbefore: %s\nafter:  %s", b1, b2)
	}

	if s2.ActorAt(grid.C(4, 4)) != s2.ActorAt(grid.C(3, 3)) {
		t.Error("loaded boss is not composite")
	}
}

func TestLoadDocumentRejectsWrongLayer(t *testing.T) {
	doc := level.NewDocument("bad")
	doc.Terrain["1,1"] = &level.Record{Type: "Melee", Pos: level.Point{X: 32, Y: 32}}
	s := New(config.DefaultSimulationConfig(), Hooks{}, nil)
	if err := s.LoadDocument(doc, nil); err == nil {
		t.Error("expected error for actor stored as terrain")
	}
}

func TestExploration(t *testing.T) {
	x := NewExploration()
	x.Reveal(grid.C(5, 5), 1)
	if x.Len() != 5 {
		t.Errorf("Len = %d, want 5", x.Len())
	}
	if !x.Has(grid.C(5, 4)) || x.Has(grid.C(6, 6)) {
		t.Error("reveal radius wrong")
	}
	cells := x.Cells()
	if cells[0] != grid.C(4, 5) {
		t.Errorf("first cell = %v, want 4,5", cells[0])
	}
	x.Reset()
	if x.Len() != 0 {
		t.Error("Reset did not clear")
	}
}

func TestRevisionTracksTerrain(t *testing.T) {
	s := load(t,
		"RRRRR",
		"RPH R",
		"RRRRR",
	)
	before := s.Revision()
	s.SetInput(Input{DX: 1})
	run(t, s, 1, 3)
	if s.Revision() != before {
		t.Fatal("revision changed without a terrain change")
	}
	run(t, s, 4, 4)
	if s.Revision() != before+1 {
		t.Errorf("revision = %d, want %d after consuming the pickup", s.Revision(), before+1)
	}
}
