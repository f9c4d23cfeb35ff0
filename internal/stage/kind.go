package stage

import "github.com/lawnchairsociety/dragogauntlet/internal/grid"

// Kind identifies what an entity is. Behavior and collision are looked up in
// the capability table rather than dispatched per type.
type Kind int

const (
	KindRock Kind = iota
	KindTree
	KindWater
	KindDoor
	KindExit
	KindHealth
	KindArrows
	KindFireballs
	KindKey
	KindCrate
	KindPlayer
	KindMelee
	KindRanged
	KindBoss
	KindArrow
	KindFireball

	kindCount
)

// layer is the spatial map an entity lives in.
type layer int

const (
	layerTerrain layer = iota
	layerActor
	layerProjectile
)

type capability struct {
	name  string
	glyph byte
	layer layer
	size  int

	// blocksFeet stops players and enemies.
	blocksFeet bool
	// blocksCrates stops pushed crates.
	blocksCrates bool
	// blocksShots stops arrows and flying fireballs.
	blocksShots bool

	pickup bool
	mortal bool
}

var capabilities = [kindCount]capability{
	KindRock:      {name: "Rock", glyph: grid.Rock, layer: layerTerrain, size: 1, blocksFeet: true, blocksCrates: true, blocksShots: true},
	KindTree:      {name: "Tree", glyph: grid.Tree, layer: layerTerrain, size: 1, blocksFeet: true, blocksCrates: true, blocksShots: true},
	KindWater:     {name: "Water", glyph: grid.Water, layer: layerTerrain, size: 1, blocksFeet: true},
	KindDoor:      {name: "Door", glyph: grid.Door, layer: layerTerrain, size: 1, blocksFeet: true, blocksCrates: true, blocksShots: true},
	KindExit:      {name: "Exit", glyph: grid.Exit, layer: layerTerrain, size: 1, blocksCrates: true},
	KindHealth:    {name: "Health", glyph: grid.Health, layer: layerTerrain, size: 1, pickup: true},
	KindArrows:    {name: "Arrows", glyph: grid.ArrowPickup, layer: layerTerrain, size: 1, pickup: true},
	KindFireballs: {name: "Fireballs", glyph: grid.FireballPickup, layer: layerTerrain, size: 1, pickup: true},
	KindKey:       {name: "Key", glyph: grid.Key, layer: layerTerrain, size: 1, pickup: true},
	KindCrate:     {name: "Crate", glyph: grid.Crate, layer: layerActor, size: 1},
	KindPlayer:    {name: "Player", glyph: grid.Player, layer: layerActor, size: 1, mortal: true},
	KindMelee:     {name: "Melee", glyph: grid.Melee, layer: layerActor, size: 1, mortal: true},
	KindRanged:    {name: "Ranged", glyph: grid.Ranged, layer: layerActor, size: 1, mortal: true},
	KindBoss:      {name: "Boss", glyph: grid.Boss, layer: layerActor, size: 2, mortal: true},
	KindArrow:     {name: "Arrow", layer: layerProjectile, size: 1},
	KindFireball:  {name: "Fireball", layer: layerProjectile, size: 1},
}

func (k Kind) valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.valid() {
		return "Unknown"
	}
	return capabilities[k].name
}

// Glyph returns the procedural seed character for k, or 0 for projectiles.
func (k Kind) Glyph() byte {
	if !k.valid() {
		return 0
	}
	return capabilities[k].glyph
}

// IsPickup reports whether the player consumes k on contact.
func (k Kind) IsPickup() bool {
	return k.valid() && capabilities[k].pickup
}

// IsMortal reports whether k has hit points.
func (k Kind) IsMortal() bool {
	return k.valid() && capabilities[k].mortal
}

// IsEnemy reports whether k is a hostile actor.
func (k Kind) IsEnemy() bool {
	return k == KindMelee || k == KindRanged || k == KindBoss
}

// KindFromName resolves a level document type name.
func KindFromName(name string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if capabilities[k].name == name {
			return k, true
		}
	}
	return 0, false
}

// KindFromGlyph resolves a procedural seed character. Floor and boss
// parts have no kind.
func KindFromGlyph(ch byte) (Kind, bool) {
	if ch == grid.Floor || ch == grid.BossPart || ch == 0 {
		return 0, false
	}
	for k := Kind(0); k < kindCount; k++ {
		if capabilities[k].glyph == ch {
			return k, true
		}
	}
	return 0, false
}
