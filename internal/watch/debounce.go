package watch

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects file changes and hands them to a callback once no new
// change arrived for the configured delay.
type Debouncer struct {
	delay    time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	files    map[string]struct{}
	callback func([]string)
	stopped  bool
}

// NewDebouncer returns a debouncer that calls callback with the sorted set of
// files changed during each quiet period.
func NewDebouncer(delay time.Duration, callback func([]string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		files:    make(map[string]struct{}),
		callback: callback,
	}
}

// Add records a change and restarts the quiet period.
func (d *Debouncer) Add(file string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.files[file] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.files) == 0 {
		d.mu.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for f := range d.files {
		files = append(files, f)
	}
	d.files = make(map[string]struct{})
	cb := d.callback
	d.mu.Unlock()

	sort.Strings(files)
	if cb != nil {
		cb(files)
	}
}

// Stop drops pending changes. Add is a no-op afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.files = make(map[string]struct{})
}
