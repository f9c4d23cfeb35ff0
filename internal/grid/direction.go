package grid

// Direction represents a cardinal direction
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Delta returns the column and row offset of one step in the direction.
// Rows grow southwards.
func (d Direction) Delta() (dc, dr int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// AllDirections returns all four cardinal directions
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// Neighbors8 lists the offsets of the eight surrounding cells.
var Neighbors8 = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}
