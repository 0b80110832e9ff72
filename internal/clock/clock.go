// Package clock supplies the monotonic wall-clock "now" every component
// consults, and the background sweep that evicts expired holds (spec §4.2,
// Clock & Expiry Service).
package clock

import "time"

// Clock abstracts time.Now so tests can control it and every component
// agrees on a single source of "now" without touching a global.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real returns the system wall clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

// Fixed is a Clock that always reports T — used in tests that need a
// deterministic "now" to reason about expiry boundaries.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
