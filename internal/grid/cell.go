// Package grid maps positions onto the discrete cells shared by the level
// generator and the stage.
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cell is one discrete grid position. It is comparable and is used directly
// as a map key.
type Cell struct {
	Col, Row int
}

// C is shorthand for Cell{Col: col, Row: row}.
func C(col, row int) Cell {
	return Cell{Col: col, Row: row}
}

// Key returns the canonical "<col>,<row>" form used by level documents.
func (c Cell) Key() string {
	return strconv.Itoa(c.Col) + "," + strconv.Itoa(c.Row)
}

func (c Cell) String() string {
	return c.Key()
}

// Add returns the cell offset by (dc, dr).
func (c Cell) Add(dc, dr int) Cell {
	return Cell{Col: c.Col + dc, Row: c.Row + dr}
}

// Manhattan returns the L1 distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.Col-o.Col) + abs(c.Row-o.Row)
}

// Dist returns the Euclidean distance between two cells.
func (c Cell) Dist(o Cell) float64 {
	return math.Hypot(float64(c.Col-o.Col), float64(c.Row-o.Row))
}

// ParseKey parses a "<col>,<row>" key.
func ParseKey(key string) (Cell, error) {
	cs, rs, ok := strings.Cut(key, ",")
	if !ok {
		return Cell{}, fmt.Errorf("invalid cell key %q", key)
	}
	col, err := strconv.Atoi(strings.TrimSpace(cs))
	if err != nil {
		return Cell{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return Cell{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	return Cell{Col: col, Row: row}, nil
}

// FromPixel snaps a pixel position to the cell containing it. Negative
// coordinates floor towards negative infinity.
func FromPixel(x, y float64, size int) Cell {
	s := float64(size)
	return Cell{Col: int(math.Floor(x / s)), Row: int(math.Floor(y / s))}
}

// ToPixel returns the pixel position of the cell's origin corner.
func ToPixel(c Cell, size int) (x, y int) {
	return c.Col * size, c.Row * size
}

// Nearest rounds a continuous position, in cell units, to the nearest cell.
func Nearest(x, y float64) Cell {
	return Cell{Col: int(math.Round(x)), Row: int(math.Round(y))}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
