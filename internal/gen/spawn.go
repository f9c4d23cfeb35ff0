package gen

import (
	"errors"

	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
)

// ErrNoFloor is returned when a level has no empty cell for the spawn or exit.
var ErrNoFloor = errors.New("no empty cell left")

// walkable reports whether a player could eventually cross ch.
func walkable(ch byte) bool {
	switch ch {
	case grid.Floor, grid.Door, grid.Key, grid.ArrowPickup, grid.FireballPickup,
		grid.Health, grid.Crate, grid.Player:
		return true
	}
	return false
}

// SpawnAndExit puts the player on the empty cell closest to (1,1) and the
// exit on the empty cell farthest from it by walking distance. When nothing
// is reachable the exit falls back to the farthest empty cell by Manhattan
// distance.
func SpawnAndExit(g *grid.Grid) (spawn, exit grid.Cell, err error) {
	corner := grid.C(1, 1)
	best := -1
	g.Each(func(col, row int, ch byte) {
		c := grid.C(col, row)
		if ch != grid.Floor {
			return
		}
		if d := c.Manhattan(corner); best < 0 || d < best {
			best, spawn = d, c
		}
	})
	if best < 0 {
		return spawn, exit, ErrNoFloor
	}
	g.Set(spawn.Col, spawn.Row, grid.Player)

	dist := walkDistances(g, spawn)
	far := 0
	g.Each(func(col, row int, ch byte) {
		c := grid.C(col, row)
		if ch != grid.Floor {
			return
		}
		if d, ok := dist[c]; ok && d > far {
			far, exit = d, c
		}
	})

	if far == 0 {
		far = -1
		g.Each(func(col, row int, ch byte) {
			c := grid.C(col, row)
			if ch != grid.Floor {
				return
			}
			if d := c.Manhattan(spawn); d > far {
				far, exit = d, c
			}
		})
		if far < 0 {
			return spawn, exit, ErrNoFloor
		}
	}

	g.Set(exit.Col, exit.Row, grid.Exit)
	return spawn, exit, nil
}

// walkDistances runs a BFS over walkable cells and returns step counts.
func walkDistances(g *grid.Grid, from grid.Cell) map[grid.Cell]int {
	dist := map[grid.Cell]int{from: 0}
	queue := []grid.Cell{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dir := range grid.AllDirections() {
			nb := cur.Add(dir.Delta())
			if _, ok := dist[nb]; ok || !walkable(g.AtCell(nb)) {
				continue
			}
			dist[nb] = dist[cur] + 1
			queue = append(queue, nb)
		}
	}
	return dist
}
