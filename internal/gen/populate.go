package gen

import (
	"math"
	"math/rand"

	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
	"github.com/zyedidia/generic/mapset"
)

const (
	// waterStraight is the chance a water walk keeps its heading.
	waterStraight = 0.8
	// waterRetryFactor bounds border retries per walk as a multiple of its length.
	waterRetryFactor = 10
	// actorMargin keeps non-crate actors out of the spawn corner.
	actorMargin = 7
)

// interior samples a uniform non-border cell.
func interior(rng *rand.Rand, g *grid.Grid) grid.Cell {
	return grid.C(1+rng.Intn(g.Width-2), 1+rng.Intn(g.Height-2))
}

// walkLength samples mean + round((U-0.5)*sigma).
func walkLength(rng *rand.Rand, mean, sigma int) int {
	return mean + int(math.Round((rng.Float64()-0.5)*float64(sigma)))
}

// Caverns clears round(fraction*area/mean) blobs of roughly mean cells each,
// grown depth-first from existing floor cells, so every blob stays joined to
// the floor it started on. The border is never cleared.
func Caverns(rng *rand.Rand, g *grid.Grid, fraction float64, mean, sigma int) {
	if mean <= 0 {
		return
	}
	var floors []grid.Cell
	g.Each(func(col, row int, ch byte) {
		if ch == grid.Floor && !g.OnBorder(col, row) {
			floors = append(floors, grid.C(col, row))
		}
	})
	if len(floors) == 0 {
		return
	}

	n := int(math.Round(fraction * float64(g.Area()) / float64(mean)))
	for i := 0; i < n; i++ {
		size := walkLength(rng, mean, sigma)
		visited := mapset.New[grid.Cell]()
		frontier := []grid.Cell{floors[rng.Intn(len(floors))]}
		for cleared := 0; cleared < size && len(frontier) > 0; {
			pt := frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			if visited.Has(pt) {
				continue
			}
			visited.Put(pt)
			if g.AtCell(pt) != grid.Floor {
				g.Set(pt.Col, pt.Row, grid.Floor)
				floors = append(floors, pt)
			}
			cleared++
			for _, dir := range grid.AllDirections() {
				nb := pt.Add(dir.Delta())
				if !g.OnBorder(nb.Col, nb.Row) && g.InBounds(nb.Col, nb.Row) {
					frontier = append(frontier, nb)
				}
			}
		}
	}
}

// Water lays round(fraction*area/mean) random-walk streams. A walk keeps its
// heading with probability 0.8. Steps onto the border are retried, and keys
// and doors are walked over without being flooded.
func Water(rng *rand.Rand, g *grid.Grid, fraction float64, mean, sigma int) {
	if mean <= 0 {
		return
	}
	dirs := grid.AllDirections()
	n := int(math.Round(fraction * float64(g.Area()) / float64(mean)))
	for i := 0; i < n; i++ {
		length := walkLength(rng, mean, sigma)
		prev := interior(rng, g)
		dc, dr := 0, 0
		retries := 0
		for j := 0; j < length; {
			if (dc == 0 && dr == 0) || rng.Float64() > waterStraight {
				dc, dr = dirs[rng.Intn(len(dirs))].Delta()
			}
			next := prev.Add(dc, dr)
			if g.OnBorder(next.Col, next.Row) {
				retries++
				if retries > waterRetryFactor*length {
					break
				}
				dc, dr = 0, 0
				continue
			}
			if ch := g.AtCell(next); ch != grid.Key && ch != grid.Door {
				g.Set(next.Col, next.Row, grid.Water)
			}
			prev = next
			j++
		}
	}
}

// Trees recolors whole 4-connected rock regions to trees, each with
// probability fraction.
func Trees(rng *rand.Rand, g *grid.Grid, fraction float64) {
	visited := mapset.New[grid.Cell]()
	for col := 0; col < g.Width; col++ {
		for row := 0; row < g.Height; row++ {
			start := grid.C(col, row)
			if visited.Has(start) || g.AtCell(start) != grid.Rock {
				continue
			}
			fill := grid.Rock
			if rng.Float64() < fraction {
				fill = grid.Tree
			}
			frontier := []grid.Cell{start}
			for len(frontier) > 0 {
				pt := frontier[len(frontier)-1]
				frontier = frontier[:len(frontier)-1]
				if visited.Has(pt) || !g.InBounds(pt.Col, pt.Row) || g.AtCell(pt) != grid.Rock {
					continue
				}
				visited.Put(pt)
				g.Set(pt.Col, pt.Row, fill)
				for _, dir := range grid.AllDirections() {
					frontier = append(frontier, pt.Add(dir.Delta()))
				}
			}
		}
	}
}

// Actors makes round(fraction*area) placement attempts of kind at uniform
// cells. Crates take any empty cell; other kinds skip cells with col or row
// at most 7. A boss needs an empty 2x2 block and marks its other three cells
// with BossPart. Returns the number placed.
func Actors(rng *rand.Rand, g *grid.Grid, kind byte, fraction float64) int {
	n := int(math.Round(fraction * float64(g.Area())))
	placed := 0
	for i := 0; i < n; i++ {
		col, row := rng.Intn(g.Width), rng.Intn(g.Height)
		if kind == grid.Crate {
			if g.At(col, row) == grid.Floor {
				g.Set(col, row, kind)
				placed++
			}
			continue
		}
		if col <= actorMargin || row <= actorMargin {
			continue
		}
		if kind == grid.Boss {
			if g.At(col, row) == grid.Floor && g.At(col+1, row) == grid.Floor &&
				g.At(col, row+1) == grid.Floor && g.At(col+1, row+1) == grid.Floor {
				g.Set(col, row, grid.Boss)
				g.Set(col+1, row, grid.BossPart)
				g.Set(col, row+1, grid.BossPart)
				g.Set(col+1, row+1, grid.BossPart)
				placed++
			}
			continue
		}
		if g.At(col, row) == grid.Floor {
			g.Set(col, row, kind)
			placed++
		}
	}
	return placed
}
