package widget

import "strings"

var _ Widget = (*LogView)(nil)

// ScrollMode indicates whether the log is following new output.
type ScrollMode int

const (
	ModeLive ScrollMode = iota
	ModeScrolled
)

// ScrollbackBuffer is a ring buffer of device output lines.
type ScrollbackBuffer struct {
	lines    []string
	head     int
	tail     int
	count    int
	capacity int
}

// NewScrollbackBuffer creates a new ring buffer.
func NewScrollbackBuffer(capacity int) *ScrollbackBuffer {
	if capacity <= 0 {
		capacity = 10000
	}
	return &ScrollbackBuffer{
		lines:    make([]string, capacity),
		capacity: capacity,
	}
}

// Append adds a line, evicting the oldest when full.
func (sb *ScrollbackBuffer) Append(line string) {
	sb.lines[sb.tail] = line
	sb.tail = (sb.tail + 1) % sb.capacity

	if sb.count < sb.capacity {
		sb.count++
	} else {
		sb.head = (sb.head + 1) % sb.capacity
	}
}

// Count returns the number of lines.
func (sb *ScrollbackBuffer) Count() int {
	return sb.count
}

// At retrieves a line by logical index (0 = oldest).
func (sb *ScrollbackBuffer) At(i int) string {
	if i < 0 || i >= sb.count {
		return ""
	}
	return sb.lines[(sb.head+i)%sb.capacity]
}

// LogView renders the tail of a ScrollbackBuffer, or an older window of it
// when scrolled back.
type LogView struct {
	buffer   *ScrollbackBuffer
	offset   int // lines from bottom, 0 = newest
	width    int
	height   int
	mode     ScrollMode
	newLines int
	fit      func(string, int) string

	cacheValid bool
	cachedView string
}

// NewLogView creates a view over buffer. fit clips each line to the view
// width.
func NewLogView(buffer *ScrollbackBuffer, fit func(string, int) string) *LogView {
	return &LogView{buffer: buffer, fit: fit}
}

// Append adds a line and keeps the window stable when scrolled back.
func (v *LogView) Append(line string) {
	v.buffer.Append(line)
	if v.mode == ModeScrolled {
		v.offset++
		v.newLines++
		v.clampOffset()
	}
	v.cacheValid = false
}

// View implements Widget.
func (v *LogView) View() string {
	if v.cacheValid {
		return v.cachedView
	}

	rows := make([]string, 0, v.height)
	end := v.buffer.Count() - v.offset
	start := end - v.height
	if start < 0 {
		start = 0
	}
	for i := start; i < end; i++ {
		rows = append(rows, v.fit(v.buffer.At(i), v.width))
	}
	blank := v.fit("", v.width)
	for len(rows) < v.height {
		rows = append(rows, blank)
	}

	v.cachedView = strings.Join(rows, "\n")
	v.cacheValid = true
	return v.cachedView
}

// SetSize implements Widget.
func (v *LogView) SetSize(width, height int) {
	if width != v.width || height != v.height {
		v.width = width
		v.height = height
		v.clampOffset()
		v.cacheValid = false
	}
}

// PreferredHeight implements Widget. The log fills what it is given.
func (v *LogView) PreferredHeight() int {
	return v.height
}

// PageUp scrolls one page toward older lines.
func (v *LogView) PageUp() {
	v.ScrollUp(v.height - 1)
}

// PageDown scrolls one page toward newer lines.
func (v *LogView) PageDown() {
	v.ScrollDown(v.height - 1)
}

// ScrollUp scrolls up by n lines.
func (v *LogView) ScrollUp(n int) {
	if n < 1 {
		n = 1
	}
	v.offset += n
	v.clampOffset()
	if v.offset > 0 {
		v.mode = ModeScrolled
	}
	v.cacheValid = false
}

// ScrollDown scrolls down by n lines, returning to live at the bottom.
func (v *LogView) ScrollDown(n int) {
	if n < 1 {
		n = 1
	}
	v.offset -= n
	if v.offset <= 0 {
		v.GotoBottom()
		return
	}
	v.cacheValid = false
}

// GotoBottom returns to live mode.
func (v *LogView) GotoBottom() {
	v.offset = 0
	v.mode = ModeLive
	v.newLines = 0
	v.cacheValid = false
}

// Mode returns the current scroll mode.
func (v *LogView) Mode() ScrollMode {
	return v.mode
}

// NewLineCount returns lines added while scrolled back.
func (v *LogView) NewLineCount() int {
	return v.newLines
}

func (v *LogView) clampOffset() {
	maxOffset := v.buffer.Count() - v.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.offset > maxOffset {
		v.offset = maxOffset
	}
}
