// Package transport is the line-oriented channel to the inference device:
// a serial port, or a TCP bridge that exposes one.
package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotConnected is returned by writes when no device is open, or when
	// the connection a writer was bound to has gone away.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrSuperseded is returned by Open when Close or another Open ran while
	// it was dialing. The connection it dialed is closed.
	ErrSuperseded = errors.New("transport: open superseded")
)

// Line is one line of text received from the device.
type Line struct {
	Text string
	At   time.Time
}

// EventKind identifies a connection lifecycle change.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
)

// Event reports a connection lifecycle change.
type Event struct {
	Kind   EventKind
	Target string
	Err    error // Read error that ended the connection, if any
}

// Stats holds transport statistics for monitoring.
type Stats struct {
	Connected    bool
	Target       string
	BytesRead    uint64
	BytesWritten uint64
	LinesRead    uint64
	LinesWritten uint64
	LastReadTime time.Time
	LineQueueLen int
	LineQueueCap int
}

// Conn is what an Opener hands back: a raw byte stream to the device.
type Conn interface {
	io.ReadWriteCloser
}

// deadliner is implemented by connections that support write timeouts.
type deadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Opener opens a connection to target.
type Opener func(ctx context.Context, target string) (Conn, error)

// Port manages the lifecycle of device connections.
// It provides stable channels to the session while connections come and go
// underneath.
type Port struct {
	open Opener

	// Stable channels the session reads from. Never closed.
	lines  chan Line
	events chan Event

	mu      sync.Mutex
	current *connection
	gen     uint64 // Bumped by every Open and Close

	// writeMu keeps concurrent WriteLine calls from interleaving bytes.
	writeMu sync.Mutex

	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
	linesRead    atomic.Uint64
	linesWritten atomic.Uint64
	lastReadTime atomic.Int64 // Unix nano

	log *logrus.Entry
}

// connection is a single, ephemeral device session.
type connection struct {
	conn   Conn
	target string

	done      chan struct{}
	closeOnce sync.Once
}

// NewPort creates a port that opens connections with open.
func NewPort(open Opener) *Port {
	return &Port{
		open:   open,
		lines:  make(chan Line, 256),
		events: make(chan Event, 16),
		log:    logrus.WithField("component", "transport"),
	}
}

// Open connects to target, replacing any existing connection.
// The dial runs without holding the port lock, so Connected, Stats and
// writes stay responsive while a slow device opens.
func (p *Port) Open(ctx context.Context, target string) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	old := p.current
	p.current = nil
	p.mu.Unlock()

	// The old connection must release the device before it is reopened.
	if old != nil {
		old.close()
	}

	p.bytesRead.Store(0)
	p.bytesWritten.Store(0)
	p.linesRead.Store(0)
	p.linesWritten.Store(0)
	p.lastReadTime.Store(0)

	conn, err := p.open(ctx, target)
	if err != nil {
		return err
	}

	cx := &connection{
		conn:   conn,
		target: target,
		done:   make(chan struct{}),
	}

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		conn.Close()
		p.log.WithField("target", target).Info("Open superseded, closing")
		return ErrSuperseded
	}
	p.current = cx
	p.mu.Unlock()

	go p.readLoop(cx)

	p.log.WithField("target", target).Info("Device connected")
	p.emit(cx, Event{Kind: EventConnected, Target: target})
	return nil
}

// Close closes the current connection, if any, and abandons a dial in
// progress.
func (p *Port) Close() {
	p.mu.Lock()
	p.gen++
	cx := p.current
	p.current = nil
	p.mu.Unlock()

	if cx != nil {
		p.log.WithField("target", cx.target).Info("Device disconnected")
		cx.close()
	}
}

// WriteLine writes line followed by "\n" to whatever connection is current.
// It blocks until the bytes have been handed to the device or the write
// fails.
func (p *Port) WriteLine(line string) error {
	p.mu.Lock()
	cx := p.current
	p.mu.Unlock()

	return p.write(cx, line)
}

// Writer returns a LineWriter pinned to the current connection. A multi-line
// transfer uses it so that a reconnect midway fails the transfer instead of
// sending its tail to a different device.
func (p *Port) Writer() (LineWriter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, ErrNotConnected
	}
	return &connWriter{port: p, cx: p.current}, nil
}

type connWriter struct {
	port *Port
	cx   *connection
}

func (w *connWriter) WriteLine(line string) error {
	return w.port.write(w.cx, line)
}

func (p *Port) write(cx *connection, line string) error {
	if cx == nil {
		return ErrNotConnected
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	select {
	case <-cx.done:
		return ErrNotConnected
	default:
	}

	if d, ok := cx.conn.(deadliner); ok {
		d.SetWriteDeadline(time.Now().Add(5 * time.Second))
		defer d.SetWriteDeadline(time.Time{})
	}

	n, err := io.WriteString(cx.conn, line+"\n")
	p.bytesWritten.Add(uint64(n))
	if err != nil {
		// Close the connection so the read loop reports the disconnect.
		cx.conn.Close()
		select {
		case <-cx.done:
			return ErrNotConnected
		default:
		}
		return err
	}
	p.linesWritten.Add(1)
	return nil
}

// Lines returns the stable inbound line channel.
func (p *Port) Lines() <-chan Line {
	return p.lines
}

// Events returns the stable connection event channel.
func (p *Port) Events() <-chan Event {
	return p.events
}

// Connected reports whether a device is open.
func (p *Port) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// Target returns the current connection target, or "".
func (p *Port) Target() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ""
	}
	return p.current.target
}

// Stats returns current transport statistics.
func (p *Port) Stats() Stats {
	p.mu.Lock()
	cx := p.current
	p.mu.Unlock()

	lastRead := time.Unix(0, p.lastReadTime.Load())
	if p.lastReadTime.Load() == 0 {
		lastRead = time.Time{}
	}

	s := Stats{
		Connected:    cx != nil,
		BytesRead:    p.bytesRead.Load(),
		BytesWritten: p.bytesWritten.Load(),
		LinesRead:    p.linesRead.Load(),
		LinesWritten: p.linesWritten.Load(),
		LastReadTime: lastRead,
		LineQueueLen: len(p.lines),
		LineQueueCap: cap(p.lines),
	}
	if cx != nil {
		s.Target = cx.target
	}
	return s
}

// readLoop reads lines from one connection until it fails or is closed.
// It blocks on the lines channel if the session is slow.
func (p *Port) readLoop(cx *connection) {
	r := bufio.NewReader(cx.conn)

	for {
		text, err := r.ReadString('\n')
		if len(text) > 0 {
			p.bytesRead.Add(uint64(len(text)))
			p.lastReadTime.Store(time.Now().UnixNano())
		}

		// A trailing fragment without "\n" is only delivered at EOF.
		if err == nil || (errors.Is(err, io.EOF) && text != "") {
			text = strings.TrimRight(text, "\r\n")
			p.linesRead.Add(1)
			select {
			case p.lines <- Line{Text: text, At: time.Now()}:
			case <-cx.done:
				return
			}
		}

		if err != nil {
			p.mu.Lock()
			isCurrent := p.current == cx
			if isCurrent {
				p.current = nil
			}
			p.mu.Unlock()

			if isCurrent {
				p.log.WithError(err).WithField("target", cx.target).Warn("Device read failed")
				p.emit(cx, Event{Kind: EventDisconnected, Target: cx.target, Err: err})
				cx.close()
			}
			return
		}
	}
}

// emit delivers a lifecycle event without blocking forever on a dead session.
func (p *Port) emit(cx *connection, ev Event) {
	select {
	case p.events <- ev:
	case <-cx.done:
	default:
		p.log.WithField("event", ev.Kind).Warn("Event queue full, dropping")
	}
}

// close shuts the connection down exactly once.
func (cx *connection) close() {
	cx.closeOnce.Do(func() {
		close(cx.done)
		cx.conn.Close()
	})
}
