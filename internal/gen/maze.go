package gen

import (
	"math/rand"

	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
)

// mazeStep is the distance between corridor centers. Corridors are three
// cells wide with one-cell walls between them.
const mazeStep = 4

// Maze carves three-wide corridors into solid rock with a depth-first
// backtracker starting at (2,2). Every floor cell is reachable from the start.
func Maze(rng *rand.Rand, width, height int) *grid.Grid {
	g := grid.New(width, height, grid.Rock)

	start := grid.C(2, 2)
	carveBlock(g, start)
	stack := []grid.Cell{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		dirs := mazeNeighbors(g, cur)
		if len(dirs) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		dir := dirs[rng.Intn(len(dirs))]
		dc, dr := dir.Delta()
		next := cur.Add(dc*mazeStep, dr*mazeStep)
		carveBlock(g, next)
		carveDoor(g, dir, cur.Add(dc*mazeStep/2, dr*mazeStep/2))
		stack = append(stack, next)
	}

	return g
}

// mazeNeighbors returns the directions whose target block, with a one-cell
// margin, is inside the grid and still solid rock.
func mazeNeighbors(g *grid.Grid, cur grid.Cell) []grid.Direction {
	var good []grid.Direction
	for _, dir := range grid.AllDirections() {
		dc, dr := dir.Delta()
		t := cur.Add(dc*mazeStep, dr*mazeStep)
		if solid(g, t, 2) {
			good = append(good, dir)
		}
	}
	return good
}

func solid(g *grid.Grid, center grid.Cell, radius int) bool {
	for dc := -radius; dc <= radius; dc++ {
		for dr := -radius; dr <= radius; dr++ {
			c := center.Add(dc, dr)
			if !g.InBounds(c.Col, c.Row) || g.AtCell(c) != grid.Rock {
				return false
			}
		}
	}
	return true
}

func carveBlock(g *grid.Grid, center grid.Cell) {
	for dc := -1; dc <= 1; dc++ {
		for dr := -1; dr <= 1; dr++ {
			g.Set(center.Col+dc, center.Row+dr, grid.Floor)
		}
	}
}

// carveDoor opens the three cells across the corridor at the midpoint.
func carveDoor(g *grid.Grid, dir grid.Direction, mid grid.Cell) {
	if dir == grid.East || dir == grid.West {
		for dr := -1; dr <= 1; dr++ {
			g.Set(mid.Col, mid.Row+dr, grid.Floor)
		}
		return
	}
	for dc := -1; dc <= 1; dc++ {
		g.Set(mid.Col+dc, mid.Row, grid.Floor)
	}
}
