package transport

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/digitpad/export"
	"github.com/drake/digitpad/grid"
)

// pipeOpener returns an Opener whose connection is one end of a net.Pipe.
// The other end is delivered on the returned channel.
func pipeOpener() (Opener, <-chan net.Conn) {
	remotes := make(chan net.Conn, 4)
	return func(ctx context.Context, target string) (Conn, error) {
		local, remote := net.Pipe()
		remotes <- remote
		return local, nil
	}, remotes
}

func recvLine(t *testing.T, p *Port) Line {
	t.Helper()
	select {
	case l := <-p.Lines():
		return l
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for line")
		return Line{}
	}
}

func recvEvent(t *testing.T, p *Port) Event {
	t.Helper()
	select {
	case ev := <-p.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPortReadsLines(t *testing.T) {
	open, remotes := pipeOpener()
	p := NewPort(open)

	require.NoError(t, p.Open(context.Background(), "/dev/ttyACM0"))
	defer p.Close()
	remote := <-remotes

	ev := recvEvent(t, p)
	assert.Equal(t, EventConnected, ev.Kind)
	assert.Equal(t, "/dev/ttyACM0", ev.Target)

	go remote.Write([]byte("Hello, world 7!\r\nready\n"))

	assert.Equal(t, "Hello, world 7!", recvLine(t, p).Text)
	assert.Equal(t, "ready", recvLine(t, p).Text)
	assert.Equal(t, uint64(2), p.Stats().LinesRead)
	assert.True(t, p.Connected())
	assert.Equal(t, "/dev/ttyACM0", p.Target())
}

func TestPortWriteLine(t *testing.T) {
	open, remotes := pipeOpener()
	p := NewPort(open)

	require.NoError(t, p.Open(context.Background(), "dev"))
	defer p.Close()
	remote := <-remotes

	got := make(chan string, 2)
	go func() {
		r := bufio.NewReader(remote)
		for i := 0; i < 2; i++ {
			s, err := r.ReadString('\n')
			if err != nil {
				return
			}
			got <- s
		}
	}()

	require.NoError(t, p.WriteLine("784"))
	require.NoError(t, p.WriteLine("255"))
	assert.Equal(t, "784\n", <-got)
	assert.Equal(t, "255\n", <-got)
	assert.Equal(t, uint64(2), p.Stats().LinesWritten)
}

func TestPortWriteWithoutConnection(t *testing.T) {
	p := NewPort(func(context.Context, string) (Conn, error) {
		return nil, errors.New("unused")
	})
	assert.ErrorIs(t, p.WriteLine("0"), ErrNotConnected)
	assert.False(t, p.Connected())
}

func TestPortOpenFailure(t *testing.T) {
	p := NewPort(func(context.Context, string) (Conn, error) {
		return nil, errors.New("no such device")
	})
	err := p.Open(context.Background(), "/dev/nothing")
	require.Error(t, err)
	assert.False(t, p.Connected())
}

func TestPortRemoteHangup(t *testing.T) {
	open, remotes := pipeOpener()
	p := NewPort(open)

	require.NoError(t, p.Open(context.Background(), "dev"))
	remote := <-remotes
	recvEvent(t, p) // connected

	remote.Close()

	ev := recvEvent(t, p)
	assert.Equal(t, EventDisconnected, ev.Kind)
	assert.Error(t, ev.Err)
	assert.False(t, p.Connected())
	assert.ErrorIs(t, p.WriteLine("0"), ErrNotConnected)
}

func TestPortReopenReplacesConnection(t *testing.T) {
	open, remotes := pipeOpener()
	p := NewPort(open)

	require.NoError(t, p.Open(context.Background(), "first"))
	<-remotes
	recvEvent(t, p)

	require.NoError(t, p.Open(context.Background(), "second"))
	remote := <-remotes
	ev := recvEvent(t, p)
	assert.Equal(t, "second", ev.Target)
	assert.Equal(t, "second", p.Target())

	go remote.Write([]byte("hi\n"))
	assert.Equal(t, "hi", recvLine(t, p).Text)

	p.Close()
	assert.False(t, p.Connected())
}

// countLines drains conn and counts the lines it receives.
func countLines(conn net.Conn) *atomic.Int64 {
	var n atomic.Int64
	go func() {
		r := bufio.NewReader(conn)
		for {
			if _, err := r.ReadString('\n'); err != nil {
				return
			}
			n.Add(1)
		}
	}()
	return &n
}

// reopenAt reopens the port as target just before its nth line.
type reopenAt struct {
	w      LineWriter
	port   *Port
	n      int
	target string
	count  int
}

func (r *reopenAt) WriteLine(line string) error {
	r.count++
	if r.count == r.n {
		if err := r.port.Open(context.Background(), r.target); err != nil {
			return err
		}
	}
	return r.w.WriteLine(line)
}

func TestWriterFailsAfterReconnect(t *testing.T) {
	open, remotes := pipeOpener()
	p := NewPort(open)

	require.NoError(t, p.Open(context.Background(), "a"))
	defer p.Close()
	onA := countLines(<-remotes)

	w, err := p.Writer()
	require.NoError(t, err)

	err = export.Stream(context.Background(), grid.Snapshot{}, &reopenAt{w: w, port: p, n: 100, target: "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, err, export.ErrTransport)

	onB := countLines(<-remotes)
	assert.Eventually(t, func() bool { return onA.Load() == 99 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return onB.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	// The port itself follows the new connection.
	require.NoError(t, p.WriteLine("0"))
	assert.Eventually(t, func() bool { return onB.Load() == 1 }, time.Second, time.Millisecond)
}

func TestWriterFailsAfterClose(t *testing.T) {
	open, remotes := pipeOpener()
	p := NewPort(open)

	require.NoError(t, p.Open(context.Background(), "a"))
	countLines(<-remotes)

	w, err := p.Writer()
	require.NoError(t, err)
	require.NoError(t, w.WriteLine("784"))

	p.Close()
	assert.ErrorIs(t, w.WriteLine("0"), ErrNotConnected)

	_, err = p.Writer()
	assert.ErrorIs(t, err, ErrNotConnected)
}

// slowOpener blocks each dial until release is closed.
func slowOpener() (open Opener, dialing <-chan struct{}, release chan struct{}) {
	entered := make(chan struct{}, 1)
	release = make(chan struct{})
	open = func(ctx context.Context, target string) (Conn, error) {
		entered <- struct{}{}
		<-release
		local, remote := net.Pipe()
		go countLines(remote)
		return local, nil
	}
	return open, entered, release
}

func TestPortResponsiveWhileDialing(t *testing.T) {
	open, dialing, release := slowOpener()
	p := NewPort(open)
	defer p.Close()

	result := make(chan error, 1)
	go func() { result <- p.Open(context.Background(), "slow") }()
	<-dialing

	start := time.Now()
	assert.False(t, p.Connected())
	assert.Equal(t, "", p.Target())
	assert.False(t, p.Stats().Connected)
	assert.ErrorIs(t, p.WriteLine("0"), ErrNotConnected)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(release)
	require.NoError(t, <-result)
	assert.True(t, p.Connected())
	assert.Equal(t, "slow", p.Target())
}

func TestCloseAbandonsDial(t *testing.T) {
	open, dialing, release := slowOpener()
	p := NewPort(open)

	result := make(chan error, 1)
	go func() { result <- p.Open(context.Background(), "slow") }()
	<-dialing

	p.Close()
	close(release)

	assert.ErrorIs(t, <-result, ErrSuperseded)
	assert.False(t, p.Connected())
}

func TestIsTCP(t *testing.T) {
	assert.True(t, IsTCP("tcp://localhost:4000"))
	assert.False(t, IsTCP("/dev/ttyUSB0"))
	assert.False(t, IsTCP("COM3"))
}

func TestTCPOpener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		c.Write([]byte("bridge up\n"))
	}()

	p := NewPort(AutoOpener(DefaultBaud))
	require.NoError(t, p.Open(context.Background(), "tcp://"+ln.Addr().String()))
	defer p.Close()

	assert.Equal(t, "bridge up", recvLine(t, p).Text)
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.FailAfter(2)
	require.NoError(t, m.WriteLine("a"))
	require.NoError(t, m.WriteLine("b"))
	assert.Error(t, m.WriteLine("c"))
	assert.Equal(t, []string{"a", "b"}, m.Written())

	m.Inject("x")
	assert.Equal(t, "x", (<-m.Lines()).Text)

	m.Close()
	assert.ErrorIs(t, m.WriteLine("d"), ErrNotConnected)
}

func TestMockWriterBoundToConnection(t *testing.T) {
	m := NewMock()
	w, err := m.Writer()
	require.NoError(t, err)
	require.NoError(t, w.WriteLine("784"))

	require.NoError(t, m.Open(context.Background(), "other"))
	assert.ErrorIs(t, w.WriteLine("0"), ErrNotConnected)
	require.NoError(t, m.WriteLine("1"))
	assert.Equal(t, []string{"784", "1"}, m.Written())
}
