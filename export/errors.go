package export

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport write failed")
	// ErrIO matches every *IOError.
	ErrIO = errors.New("export write failed")
)

// TransportError reports a stream that stopped partway.
// Sent counts the lines that were written before the failure, including the
// count announcement.
type TransportError struct {
	Sent int
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("export: stream failed after %d lines: %v", e.Sent, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// IOError reports a failed file export. The file contents are unspecified.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("export: writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
