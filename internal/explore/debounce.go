package explore

import (
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a search term is applied.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces search input ahead of Session.UpdateSearch. A
// non-blank input is delivered once no further input arrived for the
// quiet period. Blank input (empty or whitespace-only) is delivered as ""
// at once and cancels any pending term.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(term string)
	timer   *time.Timer
	pending bool
	seq     uint64
}

// NewDebouncer returns a Debouncer calling fn. delay <= 0 uses
// DefaultDebounce. fn runs on a timer goroutine for delayed terms.
func NewDebouncer(delay time.Duration, fn func(term string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Push records the current input.
func (d *Debouncer) Push(input string) {
	if strings.TrimSpace(input) == "" {
		d.Cancel()
		d.fn("")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()

		d.fn(input)
	})
}

// Pending reports whether a term is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel drops a pending term.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}
