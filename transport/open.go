package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.bug.st/serial"
)

// DefaultBaud matches the device firmware's default UART speed.
const DefaultBaud = 115200

const tcpScheme = "tcp://"

// SerialOpener opens a serial device at baud, 8N1.
func SerialOpener(baud int) Opener {
	if baud <= 0 {
		baud = DefaultBaud
	}
	return func(ctx context.Context, target string) (Conn, error) {
		mode := &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
		p, err := serial.Open(target, mode)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", target, err)
		}
		return p, nil
	}
}

// TCPOpener dials a serial-over-TCP bridge. target may carry a tcp:// prefix.
func TCPOpener() Opener {
	return func(ctx context.Context, target string) (Conn, error) {
		addr := strings.TrimPrefix(target, tcpScheme)

		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			tcpConn.SetKeepAlive(true)
			tcpConn.SetKeepAlivePeriod(30 * time.Second)
		}
		return conn, nil
	}
}

// AutoOpener picks TCP for "tcp://host:port" targets and serial otherwise.
func AutoOpener(baud int) Opener {
	serialOpen := SerialOpener(baud)
	tcpOpen := TCPOpener()
	return func(ctx context.Context, target string) (Conn, error) {
		if IsTCP(target) {
			return tcpOpen(ctx, target)
		}
		return serialOpen(ctx, target)
	}
}

// IsTCP reports whether target names a TCP bridge.
func IsTCP(target string) bool {
	return strings.HasPrefix(target, tcpScheme)
}

// ListPorts returns the serial devices present on this machine.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
