package export

import (
	"context"
	"strconv"

	"github.com/drake/digitpad/grid"
)

// LineWriter is the outbound half of a line-oriented transport.
// Implementations append their own line terminator.
type LineWriter interface {
	WriteLine(line string) error
}

// ProgressFunc receives the number of cells sent so far and the total.
type ProgressFunc func(sent, total int)

type options struct {
	every    int
	progress ProgressFunc
	checksum bool
}

// Option configures Stream.
type Option func(*options)

// WithProgress calls fn after every `every` cells and once when the last
// cell has been written. every <= 0 disables progress reporting.
func WithProgress(every int, fn ProgressFunc) Option {
	return func(o *options) {
		o.every = every
		o.progress = fn
	}
}

// WithChecksum appends a "sum:<n>" trailer line where n is the number of
// nonzero cells. The device firmware does not expect it, so it is off unless
// asked for.
func WithChecksum() Option {
	return func(o *options) {
		o.checksum = true
	}
}

// Binarize reduces an intensity to 0 or 255.
func Binarize(v uint8) uint8 {
	if v > 0 {
		return grid.MaxValue
	}
	return 0
}

// Lines returns the exact sequence Stream writes without checksum: the cell
// count followed by one binarized value per cell, row-major.
func Lines(s grid.Snapshot) []string {
	lines := make([]string, 0, grid.Cells+1)
	lines = append(lines, strconv.Itoa(grid.Cells))
	for _, v := range s {
		lines = append(lines, strconv.Itoa(int(Binarize(v))))
	}
	return lines
}

// Stream writes the snapshot to w as the count line followed by 784
// binarized values. There is no acknowledgement or retry: the first failed
// write aborts the stream with a *TransportError and the caller may start
// over from scratch.
func Stream(ctx context.Context, s grid.Snapshot, w LineWriter, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sent := 0
	write := func(line string) error {
		if err := ctx.Err(); err != nil {
			return &TransportError{Sent: sent, Err: err}
		}
		if err := w.WriteLine(line); err != nil {
			return &TransportError{Sent: sent, Err: err}
		}
		sent++
		return nil
	}

	if err := write(strconv.Itoa(grid.Cells)); err != nil {
		return err
	}

	for i, v := range s {
		if err := write(strconv.Itoa(int(Binarize(v)))); err != nil {
			return err
		}
		n := i + 1
		if o.progress != nil && o.every > 0 && (n%o.every == 0 || n == grid.Cells) {
			o.progress(n, grid.Cells)
		}
	}

	if o.checksum {
		if err := write("sum:" + strconv.Itoa(s.Nonzero())); err != nil {
			return err
		}
	}
	return nil
}
