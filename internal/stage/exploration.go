package stage

import (
	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
	"github.com/zyedidia/generic/mapset"
)

// Exploration is the set of cells the player has seen on one level. It is
// owned by the presentation side and reset on every level transition.
type Exploration struct {
	cells mapset.Set[grid.Cell]
}

// NewExploration returns an empty set.
func NewExploration() *Exploration {
	return &Exploration{cells: mapset.New[grid.Cell]()}
}

// Reveal marks every cell within radius of center.
func (x *Exploration) Reveal(center grid.Cell, radius int) {
	r := float64(radius)
	for dc := -radius; dc <= radius; dc++ {
		for dr := -radius; dr <= radius; dr++ {
			c := center.Add(dc, dr)
			if c.Dist(center) <= r {
				x.cells.Put(c)
			}
		}
	}
}

// Has reports whether c has been seen.
func (x *Exploration) Has(c grid.Cell) bool {
	return x.cells.Has(c)
}

// Len returns the number of seen cells.
func (x *Exploration) Len() int {
	return x.cells.Size()
}

// Reset forgets everything.
func (x *Exploration) Reset() {
	x.cells = mapset.New[grid.Cell]()
}

// Cells returns the seen cells in column-major order.
func (x *Exploration) Cells() []grid.Cell {
	out := make([]grid.Cell, 0, x.cells.Size())
	x.cells.Each(func(c grid.Cell) {
		out = append(out, c)
	})
	sortCells(out)
	return out
}
