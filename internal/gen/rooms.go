// Package gen builds procedural levels as character grids. Every pass takes
// an injected *rand.Rand so a seed fully determines the output.
package gen

import (
	"math"
	"math/rand"

	"github.com/lawnchairsociety/dragogauntlet/internal/grid"
	"github.com/zyedidia/generic/mapset"
)

const (
	roomAttempts = 500
	roomFill     = 0.8
	doorChance   = 0.3
)

// noRoom is the room id of cells no room claimed.
const noRoom = -1

// RoomParams controls the room scatter.
type RoomParams struct {
	Width, Height int
	RoomSize      [2]int
	RoomSizeSigma [2]int
	// NearLimit is the minimum Euclidean distance between room centers.
	NearLimit float64
}

// RoomPair is an unordered room connection stored with Low < High.
type RoomPair struct {
	Low, High int
}

// DoorCandidate is a wall cell of room Low that touches room High.
type DoorCandidate struct {
	RoomPair
	Cell grid.Cell
}

// RoomLayout is the generation-time view of a room level, in unframed
// coordinates.
type RoomLayout struct {
	// IDs holds the owning room per cell, indexed [col][row].
	IDs [][]int
	// Rooms holds the claimed cells per attempt index. Rejected attempts
	// have no cells.
	Rooms       [][]grid.Cell
	Candidates  []DoorCandidate
	Connections []RoomPair
}

// Rooms scatters rectangular rooms, walls their shared edges, opens at most
// one door or gap per adjacent pair and drops a key in every room. The result
// is framed with rock and is two cells larger than the params on each axis.
func Rooms(rng *rand.Rand, p RoomParams) (*grid.Grid, *RoomLayout) {
	layout := &RoomLayout{IDs: make([][]int, p.Width)}
	for col := range layout.IDs {
		layout.IDs[col] = make([]int, p.Height)
		for row := range layout.IDs[col] {
			layout.IDs[col][row] = noRoom
		}
	}

	target := roomFill * float64(p.Width*p.Height)
	var centers []grid.Cell
	claimed := 0

	for i := 0; i < roomAttempts; i++ {
		if float64(claimed) > target {
			break
		}
		layout.Rooms = append(layout.Rooms, nil)

		center := grid.C(rng.Intn(p.Width), rng.Intn(p.Height))
		if tooNear(center, centers, p.NearLimit) {
			continue
		}
		centers = append(centers, center)

		w := p.RoomSize[0] + intn(rng, p.RoomSizeSigma[0])
		h := p.RoomSize[1] + intn(rng, p.RoomSizeSigma[1])
		if rng.Float64() > 0.5 {
			w, h = h, w
		}

		x0 := int(math.Floor(float64(center.Col) - float64(w)/2))
		x1 := int(math.Floor(float64(center.Col) + float64(w)/2))
		y0 := int(math.Floor(float64(center.Row) - float64(h)/2))
		y1 := int(math.Floor(float64(center.Row) + float64(h)/2))
		for col := max(x0, 0); col < min(x1, p.Width); col++ {
			for row := max(y0, 0); row < min(y1, p.Height); row++ {
				if layout.IDs[col][row] != noRoom {
					continue
				}
				layout.IDs[col][row] = i
				layout.Rooms[i] = append(layout.Rooms[i], grid.C(col, row))
				claimed++
			}
		}
	}

	g := grid.New(p.Width, p.Height, grid.Floor)
	for col := 0; col < p.Width; col++ {
		for row := 0; row < p.Height; row++ {
			for _, d := range grid.Neighbors8 {
				nc, nr := col+d[0], row+d[1]
				if nc < 0 || nc >= p.Width || nr < 0 || nr >= p.Height {
					continue
				}
				low, high := layout.IDs[col][row], layout.IDs[nc][nr]
				if low < high {
					g.Set(col, row, grid.Rock)
					layout.Candidates = append(layout.Candidates, DoorCandidate{
						RoomPair: RoomPair{Low: low, High: high},
						Cell:     grid.C(col, row),
					})
				}
			}
		}
	}

	openings := make([]DoorCandidate, len(layout.Candidates))
	copy(openings, layout.Candidates)
	rng.Shuffle(len(openings), func(i, j int) {
		openings[i], openings[j] = openings[j], openings[i]
	})

	connected := mapset.New[RoomPair]()
	for _, cand := range openings {
		if connected.Has(cand.RoomPair) {
			continue
		}
		connected.Put(cand.RoomPair)
		layout.Connections = append(layout.Connections, cand.RoomPair)
		if rng.Float64() < doorChance {
			g.Set(cand.Cell.Col, cand.Cell.Row, grid.Door)
		} else {
			g.Set(cand.Cell.Col, cand.Cell.Row, grid.Floor)
		}
	}

	for _, cells := range layout.Rooms {
		if len(cells) == 0 {
			continue
		}
		k := cells[rng.Intn(len(cells))]
		g.Set(k.Col, k.Row, grid.Key)
	}

	return g.Frame(1, grid.Rock), layout
}

func tooNear(c grid.Cell, centers []grid.Cell, limit float64) bool {
	for _, o := range centers {
		if c.Dist(o) < limit {
			return true
		}
	}
	return false
}

// intn is rng.Intn that tolerates a zero bound.
func intn(rng *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return rng.Intn(n)
}
