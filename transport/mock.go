package transport

import (
	"context"
	"errors"
	"sync"
)

// Mock is an in-memory device for tests.
// Like Port, its channels are never closed.
type Mock struct {
	mu        sync.Mutex
	written   []string
	failAfter int
	connected bool
	target    string
	gen       int           // Bumped on every Open, Close and Drop
	gate      chan struct{} // Writes wait on it while paused

	lines  chan Line
	events chan Event
}

// NewMock creates a connected mock device.
func NewMock() *Mock {
	return &Mock{
		failAfter: -1,
		connected: true,
		target:    "mock",
		lines:     make(chan Line, 100),
		events:    make(chan Event, 16),
	}
}

// FailAfter makes WriteLine fail once n lines have been written.
// Negative n never fails.
func (m *Mock) FailAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
}

// Inject delivers a line as if the device had printed it.
func (m *Mock) Inject(text string) {
	m.lines <- Line{Text: text}
}

// Written returns a copy of every line written so far.
func (m *Mock) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.written))
	copy(out, m.written)
	return out
}

// Pause makes writes block until resume is called.
func (m *Mock) Pause() (resume func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gate = gate
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.gate = nil
			m.mu.Unlock()
			close(gate)
		})
	}
}

// WriteLine records line on whatever connection is current.
func (m *Mock) WriteLine(line string) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(m.gen, line)
}

// Writer returns a LineWriter bound to the current simulated connection.
func (m *Mock) Writer() (LineWriter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil, ErrNotConnected
	}
	return &mockWriter{mock: m, gen: m.gen}, nil
}

type mockWriter struct {
	mock *Mock
	gen  int
}

func (w *mockWriter) WriteLine(line string) error {
	w.mock.wait()
	w.mock.mu.Lock()
	defer w.mock.mu.Unlock()
	return w.mock.record(w.gen, line)
}

func (m *Mock) wait() {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

// record appends line if connection gen is still current. Callers hold mu.
func (m *Mock) record(gen int, line string) error {
	if !m.connected || gen != m.gen {
		return ErrNotConnected
	}
	if m.failAfter >= 0 && len(m.written) >= m.failAfter {
		return errors.New("mock: write failed")
	}
	m.written = append(m.written, line)
	return nil
}

// Lines returns the inbound line channel.
func (m *Mock) Lines() <-chan Line { return m.lines }

// Events returns the connection event channel.
func (m *Mock) Events() <-chan Event { return m.events }

// Connected reports the simulated connection state.
func (m *Mock) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Target returns the simulated target.
func (m *Mock) Target() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ""
	}
	return m.target
}

// Stats reports the lines written.
func (m *Mock) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Connected:    m.connected,
		Target:       m.target,
		LinesWritten: uint64(len(m.written)),
		LineQueueLen: len(m.lines),
		LineQueueCap: cap(m.lines),
	}
}

// Open simulates connecting to target.
func (m *Mock) Open(_ context.Context, target string) error {
	m.mu.Lock()
	m.connected = true
	m.target = target
	m.gen++
	m.mu.Unlock()
	m.events <- Event{Kind: EventConnected, Target: target}
	return nil
}

// Close simulates a local disconnect.
func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.gen++
}

// Drop simulates the device going away underneath.
func (m *Mock) Drop(err error) {
	m.mu.Lock()
	target := m.target
	m.connected = false
	m.gen++
	m.mu.Unlock()
	m.events <- Event{Kind: EventDisconnected, Target: target, Err: err}
}
