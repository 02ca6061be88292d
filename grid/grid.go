// Package grid holds the 28x28 intensity grid a digit is drawn into and the
// brush that paints it.
package grid

// Grid geometry and brush constants. None of these are runtime configurable.
const (
	Size        = 28          // Grid is Size x Size cells
	Cells       = Size * Size // Total cell count (784)
	BrushRadius = 1           // 3x3 neighborhood
	MinLevel    = 1           // Lowest brush intensity level
	MaxLevel    = 9           // Highest brush intensity level
	LevelScale  = 28          // Intensity added per level at the brush center
	MaxValue    = 255
)

// DefaultCellSize is the pixel size of one grid cell on a 280x280 pixel
// canvas. Pass it to Locate when pointer positions are in pixels.
const DefaultCellSize = 10

// Cell is a single grid cell touched by a brush stroke.
type Cell struct {
	X, Y  int
	Value uint8
}

// Grid is a fixed Size x Size matrix of stored intensities.
// 0 is background; higher values draw darker.
// A Grid is not safe for concurrent use; it has a single owner.
type Grid struct {
	cells [Size][Size]uint8
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{}
}

// Paint applies one brush stroke centered at (cx, cy).
//
// The center cell gains level*LevelScale and each of the up to 8 surrounding
// cells gains half of that (floor). Values saturate at MaxValue and never
// decrease. Neighbors outside the grid are skipped.
//
// The returned cells hold the new values of every in-bounds cell of the
// neighborhood, in row-major order.
func (g *Grid) Paint(cx, cy, level int) ([]Cell, error) {
	if err := CheckLevel(level); err != nil {
		return nil, err
	}
	if err := checkCoord("x", cx); err != nil {
		return nil, err
	}
	if err := checkCoord("y", cy); err != nil {
		return nil, err
	}

	base := level * LevelScale
	touched := make([]Cell, 0, (2*BrushRadius+1)*(2*BrushRadius+1))

	for dy := -BrushRadius; dy <= BrushRadius; dy++ {
		for dx := -BrushRadius; dx <= BrushRadius; dx++ {
			x, y := cx+dx, cy+dy
			if !InBounds(x, y) {
				continue
			}

			add := base / 2
			if dx == 0 && dy == 0 {
				add = base
			}

			v := saturate(int(g.cells[y][x]) + add)
			g.cells[y][x] = v
			touched = append(touched, Cell{X: x, Y: y, Value: v})
		}
	}

	return touched, nil
}

// Clear resets every cell to 0.
func (g *Grid) Clear() {
	g.cells = [Size][Size]uint8{}
}

// At returns the value at (x, y). Out of bounds coordinates read as 0.
func (g *Grid) At(x, y int) uint8 {
	if !InBounds(x, y) {
		return 0
	}
	return g.cells[y][x]
}

// Snapshot returns a read-only copy of the grid in row-major order.
func (g *Grid) Snapshot() Snapshot {
	var s Snapshot
	for y := 0; y < Size; y++ {
		copy(s[y*Size:(y+1)*Size], g.cells[y][:])
	}
	return s
}

// InBounds reports whether (x, y) lies in [0,Size) x [0,Size).
func InBounds(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

func saturate(v int) uint8 {
	if v > MaxValue {
		return MaxValue
	}
	return uint8(v)
}

// Snapshot is a row-major copy of a grid taken at export time.
// Index y*Size+x holds cell (x, y).
type Snapshot [Cells]uint8

// At returns the value at (x, y).
func (s Snapshot) At(x, y int) uint8 {
	if !InBounds(x, y) {
		return 0
	}
	return s[y*Size+x]
}

// Values returns the snapshot as a slice.
func (s Snapshot) Values() []uint8 {
	out := make([]uint8, Cells)
	copy(out, s[:])
	return out
}

// Nonzero counts the cells with any ink in them.
func (s Snapshot) Nonzero() int {
	n := 0
	for _, v := range s {
		if v > 0 {
			n++
		}
	}
	return n
}
