// Package timer implements the countdown used by the agenda and quiz components.
//
// A Timer does not own a clock. The owner calls Tick once per elapsed second
// while the timer is active; the session scheduler does that for live rooms.
package timer

// Timer counts down from Duration to zero, one second per Tick.
type Timer struct {
	Duration  int  `json:"duration"`
	Remaining int  `json:"remaining"`
	Active    bool `json:"active"`
}

// New returns a stopped timer loaded with d seconds.
func New(d int) Timer {
	d = clamp(d)
	return Timer{Duration: d, Remaining: d}
}

// Start begins decrementing. Starting a timer with nothing left is a no-op.
func (t *Timer) Start() {
	if t.Remaining == 0 {
		return
	}
	t.Active = true
}

// Pause halts decrementing without resetting.
func (t *Timer) Pause() {
	t.Active = false
}

// Reset reloads the configured duration and halts.
func (t *Timer) Reset() {
	t.Remaining = t.Duration
	t.Active = false
}

// ResetTo replaces the configured duration with d, reloads it and halts.
func (t *Timer) ResetTo(d int) {
	t.Duration = clamp(d)
	t.Reset()
}

// Tick decrements an active timer by one second. It reports whether this tick
// finished the countdown.
func (t *Timer) Tick() bool {
	if !t.Active || t.Remaining == 0 {
		return false
	}
	t.Remaining--
	if t.Remaining == 0 {
		t.Active = false
		return true
	}
	return false
}

// Finished reports whether the countdown reached zero and is no longer running.
func (t Timer) Finished() bool {
	return t.Remaining == 0 && !t.Active
}

func clamp(d int) int {
	if d < 0 {
		return 0
	}
	return d
}
