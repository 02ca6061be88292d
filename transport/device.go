package transport

import "context"

var (
	_ Device = (*Port)(nil)
	_ Device = (*Mock)(nil)
)

// LineWriter writes one line to the device; the terminator is appended.
type LineWriter interface {
	WriteLine(line string) error
}

// Device is the surface the session drives. *Port and *Mock implement it.
type Device interface {
	Open(ctx context.Context, target string) error
	Close()
	WriteLine(line string) error
	// Writer returns a LineWriter bound to the current connection. Once that
	// connection is closed or replaced its writes fail with ErrNotConnected.
	Writer() (LineWriter, error)
	Lines() <-chan Line
	Events() <-chan Event
	Connected() bool
	Target() string
	Stats() Stats
}
