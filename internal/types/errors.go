package types

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSession is returned when an operation needs a browser that is not open.
var ErrNoSession = errors.New("browser session is not open")

// ErrSession indicates the browser could not be started or navigated.
type ErrSession struct {
	Op  string
	Err error
}

func (e ErrSession) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e ErrSession) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates a named collection or page control is absent.
type ErrNotFound struct {
	What string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("not_found: %s", e.What)
}

// ErrTimeout indicates a bounded wait expired.
type ErrTimeout struct {
	Op  string
	Err error
}

func (e ErrTimeout) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("timeout: %s", e.Op)
	}
	return fmt.Sprintf("timeout: %s: %v", e.Op, e.Err)
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrIO indicates the output file could not be written.
type ErrIO struct {
	Path string
	Err  error
}

func (e ErrIO) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e ErrIO) Unwrap() error {
	return e.Err
}

// ErrorLabel maps an error to a short label usable as a metrics dimension.
func ErrorLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	if errors.Is(err, ErrNoSession) {
		return "no_session"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var notFound ErrNotFound
	if errors.As(err, &notFound) {
		return "not_found"
	}
	var ioErr ErrIO
	if errors.As(err, &ioErr) {
		return "io"
	}
	var sess ErrSession
	if errors.As(err, &sess) {
		return "session"
	}
	return "other"
}
