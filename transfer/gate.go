package transfer

import "time"

// IdleGate decides whether silence right after input should still be
// treated as part of the performance
type IdleGate interface {
	// ShouldWait reports whether to keep waiting for input at now, given the
	// time of the last loud frame. A zero lastInput means no input yet.
	ShouldWait(now, lastInput time.Time) bool
}

// DurationGate waits while less than Grace has passed since the last input
type DurationGate struct {
	Grace time.Duration
}

// ShouldWait implements IdleGate
func (g DurationGate) ShouldWait(now, lastInput time.Time) bool {
	if lastInput.IsZero() {
		return false
	}
	return now.Sub(lastInput) < g.Grace
}

// ModuloGate waits during the first Window of every Period since the last
// input. With the defaults a pause of 60.5 s counts as fresh input again,
// so long sessions see a short wait once a minute.
type ModuloGate struct {
	Period time.Duration
	Window time.Duration
}

// ShouldWait implements IdleGate
func (g ModuloGate) ShouldWait(now, lastInput time.Time) bool {
	if lastInput.IsZero() || g.Period <= 0 {
		return false
	}
	elapsed := now.Sub(lastInput)
	if elapsed < 0 {
		return true
	}
	return elapsed%g.Period < g.Window
}
