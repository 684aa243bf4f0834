package progress

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// Tracker renders how many of the requested pages have been exported
type Tracker struct {
	bar       progress.Model
	total     int
	processed int
	mu        sync.Mutex
}

// NewTracker creates a new Tracker
func NewTracker() *Tracker {
	return &Tracker{
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

// SetTotalPages starts tracking a new run of total requested pages
func (t *Tracker) SetTotalPages(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
	t.processed = 0
}

// Observe updates the tracker from a page event
func (t *Tracker) Observe(ev Event) {
	if ev.Kind != KindPage {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if ev.Requested > t.processed {
		t.processed = ev.Requested
	}
}

// Percent returns the current progress as a fraction between 0 and 1
func (t *Tracker) Percent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percentLocked()
}

func (t *Tracker) percentLocked() float64 {
	if t.total <= 0 {
		return 0
	}
	p := float64(t.processed) / float64(t.total)
	if p > 1 {
		p = 1
	}
	return p
}

// View renders the bar followed by a page counter
func (t *Tracker) View() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("%s %d/%d pages", t.bar.ViewAs(t.percentLocked()), t.processed, t.total)
}
