package gen

import (
	"math/rand"

	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
)

const (
	// regionSpacing is the minimum Chebyshev distance between key cells.
	regionSpacing = 6
	// regionRetries bounds key sampling per requested region.
	regionRetries = 200
)

// Empty returns a floor grid framed with rock.
func Empty(width, height int) *grid.Grid {
	g := grid.New(width, height, grid.Floor)
	for col := 0; col < width; col++ {
		for row := 0; row < height; row++ {
			if g.OnBorder(col, row) {
				g.Set(col, row, grid.Rock)
			}
		}
	}
	return g
}

// Regions partitions the floor of g into up to n regions grown from key
// cells. Regions meeting for the first time get a door; any further contact
// between already connected regions is walled, so doors form a spanning
// forest. Returns the number of regions created.
func Regions(rng *rand.Rand, g *grid.Grid, n int) int {
	var keys []grid.Cell
	for attempts := 0; len(keys) < n && attempts < n*regionRetries; attempts++ {
		c := interior(rng, g)
		if g.AtCell(c) != grid.Floor || nearKey(c, keys) {
			continue
		}
		g.Set(c.Col, c.Row, grid.Key)
		keys = append(keys, c)
	}

	owner := make([]int, g.Area())
	ownerAt := func(c grid.Cell) int { return owner[c.Row*g.Width+c.Col] }

	forest := newUnionFind(len(keys) + 1)
	frontiers := make([][]grid.Cell, len(keys))
	for i, k := range keys {
		frontiers[i] = []grid.Cell{k}
	}
	var walls []grid.Cell

	// Regions grow one BFS ring per round so they expand at the same pace.
	for growing := true; growing; {
		growing = false
		for i := range frontiers {
			id := i + 1
			ring := frontiers[i]
			var next []grid.Cell
			for len(ring) > 0 {
				growing = true
				pt := ring[len(ring)-1]
				ring = ring[:len(ring)-1]

				other := ownerAt(pt)
				if other == id {
					continue
				}
				if other != 0 {
					if forest.union(id, other) {
						g.Set(pt.Col, pt.Row, grid.Door)
					} else {
						walls = append(walls, pt)
					}
					continue
				}

				owner[pt.Row*g.Width+pt.Col] = id
				for _, dir := range grid.AllDirections() {
					nb := pt.Add(dir.Delta())
					if g.OnBorder(nb.Col, nb.Row) {
						walls = append(walls, nb)
					} else if ownerAt(nb) == 0 {
						next = append(next, nb)
					}
				}
			}
			frontiers[i] = next
		}
	}

	for _, w := range walls {
		if g.AtCell(w) == grid.Floor {
			g.Set(w.Col, w.Row, grid.Rock)
		}
	}

	// Two regions touching only at a corner would leak diagonally.
	diagonals := [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	for col := 1; col < g.Width-1; col++ {
		for row := 1; row < g.Height-1; row++ {
			if g.At(col, row) != grid.Floor {
				continue
			}
			mine := owner[row*g.Width+col]
			for _, d := range diagonals {
				nc, nr := col+d[0], row+d[1]
				if g.At(nc, nr) == grid.Floor && owner[nr*g.Width+nc] != mine {
					g.Set(nc, nr, grid.Rock)
				}
			}
		}
	}

	return len(keys)
}

func nearKey(c grid.Cell, keys []grid.Cell) bool {
	for _, k := range keys {
		if abs(c.Col-k.Col) < regionSpacing && abs(c.Row-k.Row) < regionSpacing {
			return true
		}
	}
	return false
}

// unionFind tracks which regions are already joined by a door.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union joins a and b and reports whether they were separate.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	u.parent[ra] = rb
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
