package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/drake/digitpad/grid"
	"github.com/drake/digitpad/ui/tui/style"
)

// Terminal cells per grid cell. Two columns keep cells roughly square.
const (
	CellWidth  = 2
	CellHeight = 1
)

var _ Widget = (*Canvas)(nil)

// Canvas renders a mirror of the session's grid as shaded blocks.
// The session owns the real grid; the canvas only applies the changes it
// is sent.
type Canvas struct {
	cells    grid.Snapshot
	swatches [grid.MaxValue + 1]string
	border   lipgloss.Style

	cacheValid bool
	cachedView string
}

// NewCanvas creates an empty (all white) canvas.
func NewCanvas(styles style.Styles) *Canvas {
	return &Canvas{border: styles.CanvasBorder}
}

// Apply updates the given cells.
func (c *Canvas) Apply(cells []grid.Cell) {
	for _, cell := range cells {
		if !grid.InBounds(cell.X, cell.Y) {
			continue
		}
		c.cells[cell.Y*grid.Size+cell.X] = cell.Value
	}
	if len(cells) > 0 {
		c.cacheValid = false
	}
}

// Load replaces every cell.
func (c *Canvas) Load(s grid.Snapshot) {
	c.cells = s
	c.cacheValid = false
}

// Snapshot returns the mirrored values.
func (c *Canvas) Snapshot() grid.Snapshot {
	return c.cells
}

// Locate maps a position relative to the canvas' top-left corner (border
// included) to a grid cell.
func (c *Canvas) Locate(x, y int) (gx, gy int, ok bool) {
	return grid.Locate(x-1, y-1, CellWidth, CellHeight)
}

// Width is the rendered width including the border.
func (c *Canvas) Width() int {
	return grid.Size*CellWidth + 2
}

// SetSize implements Widget. The canvas has a fixed size.
func (c *Canvas) SetSize(width, height int) {}

// PreferredHeight implements Widget.
func (c *Canvas) PreferredHeight() int {
	return grid.Size*CellHeight + 2
}

// View implements Widget.
func (c *Canvas) View() string {
	if c.cacheValid {
		return c.cachedView
	}

	var b strings.Builder
	for y := 0; y < grid.Size; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < grid.Size; x++ {
			b.WriteString(c.swatch(c.cells.At(x, y)))
		}
	}

	c.cachedView = c.border.Render(b.String())
	c.cacheValid = true
	return c.cachedView
}

func (c *Canvas) swatch(v uint8) string {
	if s := c.swatches[v]; s != "" {
		return s
	}
	s := lipgloss.NewStyle().
		Background(lipgloss.Color(grid.ColorForValue(v).Hex())).
		Render(strings.Repeat(" ", CellWidth))
	c.swatches[v] = s
	return s
}
