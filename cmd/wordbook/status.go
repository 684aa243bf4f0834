package main

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// statusLine is the spinner at the bottom of the terminal. It is also the
// log writer: the spinner is erased before each write and redrawn after, so
// log lines never land on top of it.
type statusLine struct {
	mu sync.Mutex
	w  io.Writer
	sp *spinner.Spinner
	on bool
}

func newStatusLine(f *os.File) *statusLine {
	return &statusLine{
		w:  f,
		sp: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriterFile(f)),
	}
}

// Start shows the spinner with suffix.
func (l *statusLine) Start(suffix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setSuffix(suffix)
	l.on = true
	l.sp.Start()
}

// Stop erases the spinner until the next Start.
func (l *statusLine) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
	l.sp.Stop()
}

// SetSuffix changes the text next to the spinner.
func (l *statusLine) SetSuffix(suffix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setSuffix(suffix)
}

func (l *statusLine) setSuffix(suffix string) {
	l.sp.Lock()
	l.sp.Suffix = suffix
	l.sp.Unlock()
}

func (l *statusLine) suffix() string {
	l.sp.Lock()
	defer l.sp.Unlock()
	return l.sp.Suffix
}

func (l *statusLine) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on {
		l.sp.Stop()
		defer l.sp.Start()
	}
	return l.w.Write(p)
}
