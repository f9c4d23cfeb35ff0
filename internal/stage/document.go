package stage

import (
	"fmt"
	"sort"

	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
)

// Document exports terrain and actors as a level document. A boss is
// recorded under its top-left cell with null entries under the other three.
// Projectiles are not saved.
func (s *Stage) Document(name string) *level.Document {
	doc := level.NewDocument(name)
	for _, e := range s.Terrain() {
		doc.Terrain[e.Cell.Key()] = s.record(e)
	}
	for _, e := range s.Actors() {
		cells := e.Cells()
		doc.Actors[cells[0].Key()] = s.record(e)
		for _, c := range cells[1:] {
			doc.Actors[c.Key()] = nil
		}
	}
	return doc
}

func (s *Stage) record(e *Entity) *level.Record {
	size := s.rules.GridSize
	x, y := grid.ToPixel(e.Cell, size)
	r := &level.Record{
		Type: e.Kind.String(),
		Pos:  level.Point{X: x, Y: y},
		Size: level.Point{X: e.Size() * size, Y: e.Size() * size},
	}
	if e.Kind.IsMortal() {
		hp, maxHP := e.HP, e.MaxHP
		r.HP, r.MaxHP = &hp, &maxHP
	}
	if e.Kind.IsPickup() {
		r.Quantity = e.Quantity
	}
	if e.Kind == KindPlayer {
		r.Arrows = e.Inventory.Arrows
		r.Fireballs = e.Inventory.Fireballs
		r.Keys = e.Inventory.Keys
	}
	return r
}

// LoadDocument populates the stage from a level document. Entities are
// placed in column-major cell order, terrain first. Records without hit
// points take the kind's starting stats, and carry overrides the player.
func (s *Stage) LoadDocument(doc *level.Document, carry *PlayerState) error {
	if err := s.loadRecords(doc.Terrain, layerTerrain, nil); err != nil {
		return fmt.Errorf("load %s terrain: %w", doc.Name, err)
	}
	if err := s.loadRecords(doc.Actors, layerActor, carry); err != nil {
		return fmt.Errorf("load %s actors: %w", doc.Name, err)
	}
	return nil
}

func (s *Stage) loadRecords(records map[string]*level.Record, want layer, carry *PlayerState) error {
	type entry struct {
		cell grid.Cell
		rec  *level.Record
	}
	var entries []entry
	for key, rec := range records {
		if rec == nil {
			continue
		}
		c := grid.FromPixel(float64(rec.Pos.X), float64(rec.Pos.Y), s.rules.GridSize)
		if _, err := grid.ParseKey(key); err != nil {
			return err
		}
		entries = append(entries, entry{cell: c, rec: rec})
	}
	sort.Slice(entries, func(i, j int) bool { return cellLess(entries[i].cell, entries[j].cell) })

	for _, en := range entries {
		k, ok := KindFromName(en.rec.Type)
		if !ok {
			return fmt.Errorf("unknown type %q at %s", en.rec.Type, en.cell)
		}
		if capabilities[k].layer != want {
			return fmt.Errorf("%s cannot be stored at %s in this map", k, en.cell)
		}

		e := s.Spawn(k, en.cell, nil)
		if en.rec.HP != nil {
			e.HP = *en.rec.HP
			e.MaxHP = e.HP
			if en.rec.MaxHP != nil {
				e.MaxHP = *en.rec.MaxHP
			}
			if k == KindPlayer {
				e.Inventory = Inventory{
					Arrows:    en.rec.Arrows,
					Fireballs: en.rec.Fireballs,
					Keys:      en.rec.Keys,
				}
			}
		}
		if k.IsPickup() && en.rec.Quantity > 0 {
			e.Quantity = en.rec.Quantity
		}
		if k == KindPlayer && carry != nil {
			e.HP, e.MaxHP, e.Inventory = carry.HP, carry.MaxHP, carry.Inventory
		}

		if err := s.Place(e); err != nil {
			return err
		}
	}
	return nil
}
