package grid

import colorful "github.com/lucasb-eyer/go-colorful"

// Color is a grayscale display triple.
type Color struct {
	R, G, B uint8
}

// ColorForValue maps a stored intensity to its display color.
// Stored 0 renders white and 255 renders black.
func ColorForValue(v uint8) Color {
	c := MaxValue - v
	return Color{R: c, G: c, B: c}
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// Locate converts a pointer position to a grid cell by integer division by
// the cell size. ok is false when the result falls outside the grid.
func Locate(px, py, cellW, cellH int) (x, y int, ok bool) {
	if cellW <= 0 || cellH <= 0 || px < 0 || py < 0 {
		return 0, 0, false
	}
	x, y = px/cellW, py/cellH
	return x, y, InBounds(x, y)
}
