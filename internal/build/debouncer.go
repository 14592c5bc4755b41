package build

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/hotbundle/internal/watch"
)

// Debouncer delays triggers until no event has arrived for the quiet window,
// delivering only the last event of a burst.
type Debouncer struct {
	window  time.Duration
	deliver func(watch.Event)

	mu    sync.Mutex
	timer *time.Timer
	last  watch.Event
}

// NewDebouncer wraps deliver. A window <= 0 delivers immediately.
func NewDebouncer(window time.Duration, deliver func(watch.Event)) *Debouncer {
	return &Debouncer{window: window, deliver: deliver}
}

// Trigger records ev and (re)starts the quiet window.
func (d *Debouncer) Trigger(ev watch.Event) {
	if d.window <= 0 {
		d.deliver(ev)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = ev
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		ev := d.last
		d.timer = nil
		d.mu.Unlock()
		d.deliver(ev)
	})
}

// Stop cancels a pending delivery.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
