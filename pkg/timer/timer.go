package timer

import "time"

// Mode selects whether a Timer stops or wraps once its duration elapses.
type Mode uint8

const (
	Once Mode = iota
	Repeating
)

// Timer is a countdown advanced explicitly by frame time.
type Timer struct {
	Duration time.Duration
	Elapsed  time.Duration
	Mode     Mode

	finished bool
}

func NewOnce(d time.Duration) Timer {
	return Timer{Duration: d, Mode: Once}
}

func NewRepeating(d time.Duration) Timer {
	return Timer{Duration: d, Mode: Repeating}
}

// Tick advances the timer. A Once timer stays finished after it elapses; a
// Repeating timer reports finished only on the tick that wraps it.
func (t *Timer) Tick(dt time.Duration) *Timer {
	if dt < 0 {
		dt = 0
	}
	switch t.Mode {
	case Repeating:
		t.Elapsed += dt
		if t.Duration <= 0 {
			t.Elapsed = 0
			t.finished = true
			return t
		}
		t.finished = t.Elapsed >= t.Duration
		if t.finished {
			t.Elapsed %= t.Duration
		}
	default:
		t.Elapsed += dt
		if t.Elapsed >= t.Duration {
			t.Elapsed = t.Duration
			t.finished = true
		}
	}
	return t
}

func (t *Timer) Finished() bool { return t.finished }

// Remaining is the time left until the timer next finishes.
func (t *Timer) Remaining() time.Duration {
	if r := t.Duration - t.Elapsed; r > 0 {
		return r
	}
	return 0
}

// Started reports whether any time has been accumulated since the last reset.
func (t *Timer) Started() bool { return t.Elapsed > 0 || t.finished }

func (t *Timer) Reset() {
	t.Elapsed = 0
	t.finished = false
}
