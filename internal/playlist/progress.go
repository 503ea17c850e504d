package playlist

import (
	"math"

	"FilmCatalog/internal/domain"
)

// Tracker forwards progress to a caller callback while keeping the reported
// sequence inside [0, 100], non-decreasing, and ending with a single 100.
type Tracker struct {
	fn       domain.ProgressFunc
	last     float64
	reported bool
	done     bool
}

// NewTracker wraps fn; a nil fn yields a tracker that reports nothing.
func NewTracker(fn domain.ProgressFunc) *Tracker {
	return &Tracker{fn: fn}
}

// Report publishes percent unless it would move the sequence backwards.
// A value of 100 or more is held back until Complete.
func (t *Tracker) Report(percent float64) {
	if t == nil || t.fn == nil || t.done || math.IsNaN(percent) {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent >= 100 {
		return
	}
	if t.reported && percent <= t.last {
		return
	}
	t.last = percent
	t.reported = true
	t.fn(percent)
}

// Step reports completion of item done out of total.
func (t *Tracker) Step(done, total int) {
	if total <= 0 {
		return
	}
	t.Report(float64(done) / float64(total) * 100)
}

// Complete emits the final 100 exactly once.
func (t *Tracker) Complete() {
	if t == nil || t.fn == nil || t.done {
		return
	}
	t.done = true
	t.last = 100
	t.reported = true
	t.fn(100)
}

// Last returns the most recent value passed to the callback.
func (t *Tracker) Last() float64 {
	if t == nil {
		return 0
	}
	return t.last
}
