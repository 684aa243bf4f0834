// Package progress carries human-readable status events from the exporter to
// whatever shell renders them.
package progress

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Kind tells the renderer what an event describes
type Kind int

const (
	KindLog Kind = iota
	KindPage
	KindDone
)

// Event is a single status line emitted by the core
type Event struct {
	Time    time.Time
	Kind    Kind
	Level   log.Level
	Message string
	Fields  []interface{}

	// Set on KindPage events
	Page      int
	Requested int
	Rows      int
}

// Reporter is an append-only stream of progress events.
// Consumers must drain Events until the channel is closed.
// A nil *Reporter discards everything.
type Reporter struct {
	events chan Event
	mu     sync.RWMutex
	closed bool
}

// NewReporter creates a reporter with the given channel buffer
func NewReporter(buffer int) *Reporter {
	if buffer < 0 {
		buffer = 0
	}
	return &Reporter{
		events: make(chan Event, buffer),
	}
}

// Events returns the receive side of the stream
func (r *Reporter) Events() <-chan Event {
	return r.events
}

// Close ends the stream. Later emits are dropped.
func (r *Reporter) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.events)
}

func (r *Reporter) emit(ev Event) {
	if r == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	r.events <- ev
}

func (r *Reporter) logf(level log.Level, msg string, keyvals ...interface{}) {
	r.emit(Event{Kind: KindLog, Level: level, Message: msg, Fields: keyvals})
}

// Debug emits a debug status line
func (r *Reporter) Debug(msg string, keyvals ...interface{}) {
	r.logf(log.DebugLevel, msg, keyvals...)
}

// Info emits an informational status line
func (r *Reporter) Info(msg string, keyvals ...interface{}) {
	r.logf(log.InfoLevel, msg, keyvals...)
}

// Warn emits a warning status line
func (r *Reporter) Warn(msg string, keyvals ...interface{}) {
	r.logf(log.WarnLevel, msg, keyvals...)
}

// Error emits an error status line
func (r *Reporter) Error(msg string, keyvals ...interface{}) {
	r.logf(log.ErrorLevel, msg, keyvals...)
}

// Page reports that a requested page has been extracted
func (r *Reporter) Page(page, requested, rows int) {
	r.emit(Event{
		Kind:      KindPage,
		Level:     log.InfoLevel,
		Message:   "page extracted",
		Fields:    []interface{}{"page", page, "requested", requested, "rows", rows},
		Page:      page,
		Requested: requested,
		Rows:      rows,
	})
}

// Done reports the end of a run
func (r *Reporter) Done(msg string, keyvals ...interface{}) {
	r.emit(Event{Kind: KindDone, Level: log.InfoLevel, Message: msg, Fields: keyvals})
}
