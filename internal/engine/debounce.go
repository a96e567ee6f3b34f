package engine

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SearchDebouncer coalesces rapid free-text query updates. Each Update
// restarts the delay; only the latest pending query reaches the apply
// callback once the delay elapses without another keystroke.
type SearchDebouncer struct {
	clock clockwork.Clock
	delay time.Duration
	apply func(query string)

	mu    sync.Mutex
	timer clockwork.Timer
	seq   uint64
}

// NewSearchDebouncer builds a debouncer. A nil clock means real time.
func NewSearchDebouncer(clock clockwork.Clock, delay time.Duration, apply func(query string)) *SearchDebouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SearchDebouncer{clock: clock, delay: delay, apply: apply}
}

// Update schedules the query to be applied after the delay, cancelling any
// previously pending query.
func (d *SearchDebouncer) Update(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stale := seq != d.seq
		d.mu.Unlock()
		if stale {
			return
		}
		d.apply(query)
	})
}

// Stop cancels any pending query without applying it.
func (d *SearchDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
