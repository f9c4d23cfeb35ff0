package gen

import (
	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
	"github.com/zyedidia/generic/mapset"
)

// Reachable returns every non-wall cell 4-connected to from. Water, doors and
// actors count as open; only rock and trees separate regions.
func Reachable(g *grid.Grid, from grid.Cell) mapset.Set[grid.Cell] {
	seen := mapset.New[grid.Cell]()
	if grid.IsWall(g.AtCell(from)) {
		return seen
	}
	seen.Put(from)
	queue := []grid.Cell{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dir := range grid.AllDirections() {
			nb := cur.Add(dir.Delta())
			if seen.Has(nb) || !g.InBounds(nb.Col, nb.Row) || grid.IsWall(g.AtCell(nb)) {
				continue
			}
			seen.Put(nb)
			queue = append(queue, nb)
		}
	}
	return seen
}

// Unreachable lists the non-wall cells not reachable from from, in
// column-major order.
func Unreachable(g *grid.Grid, from grid.Cell) []grid.Cell {
	seen := Reachable(g, from)
	var out []grid.Cell
	g.Each(func(col, row int, ch byte) {
		c := grid.C(col, row)
		if !grid.IsWall(ch) && !seen.Has(c) {
			out = append(out, c)
		}
	})
	return out
}

// RepairReachability opens the shortest wall path from the reachable area to
// each disconnected pocket until every non-wall cell is reachable from from.
// Border cells are never opened. Returns the number of walls turned to floor.
func RepairReachability(g *grid.Grid, from grid.Cell) int {
	opened := 0
	for {
		reach := Reachable(g, from)
		if reach.Size() == 0 {
			return opened
		}

		parent := make(map[grid.Cell]grid.Cell)
		var queue []grid.Cell
		visited := mapset.New[grid.Cell]()
		g.Each(func(col, row int, _ byte) {
			if c := grid.C(col, row); reach.Has(c) {
				queue = append(queue, c)
				visited.Put(c)
			}
		})

		target, found := grid.Cell{}, false
		for len(queue) > 0 && !found {
			cur := queue[0]
			queue = queue[1:]
			for _, dir := range grid.AllDirections() {
				nb := cur.Add(dir.Delta())
				if visited.Has(nb) || !g.InBounds(nb.Col, nb.Row) || g.OnBorder(nb.Col, nb.Row) {
					continue
				}
				visited.Put(nb)
				parent[nb] = cur
				if !grid.IsWall(g.AtCell(nb)) {
					target, found = nb, true
					break
				}
				queue = append(queue, nb)
			}
		}
		if !found {
			return opened
		}

		for c := parent[target]; !reach.Has(c); c = parent[c] {
			g.Set(c.Col, c.Row, grid.Floor)
			opened++
		}
	}
}
