package grid

import (
	"fmt"
	"strings"
)

// Characters of the procedural seed format.
const (
	Floor          byte = ' '
	Rock           byte = 'R'
	Tree           byte = 'T'
	Water          byte = 'W'
	Door           byte = 'D'
	Exit           byte = 'E'
	Key            byte = 'K'
	ArrowPickup    byte = 'O'
	FireballPickup byte = 'F'
	Health         byte = 'H'
	Crate          byte = 'C'
	Melee          byte = 'S'
	Ranged         byte = 'A'
	Boss           byte = 'B'
	BossPart       byte = 'b' // secondary cell of a boss footprint
	Player         byte = 'P'
)

// IsWall reports whether ch is an impassable wall character.
func IsWall(ch byte) bool {
	return ch == Rock || ch == Tree
}

// Grid is a character grid indexed by column and row.
type Grid struct {
	Width, Height int
	cells         []byte
}

// New returns a grid of the given size filled with fill.
func New(width, height int, fill byte) *Grid {
	g := &Grid{Width: width, Height: height, cells: make([]byte, width*height)}
	for i := range g.cells {
		g.cells[i] = fill
	}
	return g
}

// Parse builds a grid from row strings. Short rows are padded with Floor.
func Parse(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	g := New(width, len(rows), Floor)
	for row, line := range rows {
		for col := 0; col < len(line); col++ {
			g.Set(col, row, line[col])
		}
	}
	return g, nil
}

// InBounds reports whether (col, row) lies inside the grid.
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.Width && row >= 0 && row < g.Height
}

// OnBorder reports whether (col, row) is on the outermost frame.
func (g *Grid) OnBorder(col, row int) bool {
	return col == 0 || row == 0 || col == g.Width-1 || row == g.Height-1
}

// At returns the character at (col, row), or Rock outside the grid.
func (g *Grid) At(col, row int) byte {
	if !g.InBounds(col, row) {
		return Rock
	}
	return g.cells[row*g.Width+col]
}

// Set writes ch at (col, row). Writes outside the grid are ignored.
func (g *Grid) Set(col, row int, ch byte) {
	if !g.InBounds(col, row) {
		return
	}
	g.cells[row*g.Width+col] = ch
}

// AtCell is At for a Cell.
func (g *Grid) AtCell(c Cell) byte {
	return g.At(c.Col, c.Row)
}

// Area returns the number of cells.
func (g *Grid) Area() int {
	return g.Width * g.Height
}

// Count returns how many cells hold ch.
func (g *Grid) Count(ch byte) int {
	n := 0
	for _, v := range g.cells {
		if v == ch {
			n++
		}
	}
	return n
}

// Each calls fn for every cell in column-major order.
func (g *Grid) Each(fn func(col, row int, ch byte)) {
	for col := 0; col < g.Width; col++ {
		for row := 0; row < g.Height; row++ {
			fn(col, row, g.cells[row*g.Width+col])
		}
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{Width: g.Width, Height: g.Height, cells: make([]byte, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Frame returns a copy of g surrounded by a margin of fill cells.
func (g *Grid) Frame(margin int, fill byte) *Grid {
	f := New(g.Width+2*margin, g.Height+2*margin, fill)
	g.Each(func(col, row int, ch byte) {
		f.Set(col+margin, row+margin, ch)
	})
	return f
}

// Rows returns one string per row.
func (g *Grid) Rows() []string {
	rows := make([]string, g.Height)
	for row := 0; row < g.Height; row++ {
		rows[row] = string(g.cells[row*g.Width : (row+1)*g.Width])
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}
