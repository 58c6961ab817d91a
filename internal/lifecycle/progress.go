package lifecycle

import "time"

// progressLimiter rate-limits progress-callback invocations to at most
// maxPerSecond per wall-clock second (spec.md §6's default of 2/sec),
// independent of how often the routing loop itself advances — a
// sub-second routing step must not flood a UI progress bar.
type progressLimiter struct {
	minInterval time.Duration
	last        time.Time
	fired       bool
}

func newProgressLimiter(maxPerSecond float64) *progressLimiter {
	if maxPerSecond <= 0 {
		maxPerSecond = 2
	}
	return &progressLimiter{minInterval: time.Duration(float64(time.Second) / maxPerSecond)}
}

// allowNow reports whether a progress callback may fire at the current
// moment, recording the attempt if so.
func (l *progressLimiter) allowNow() bool {
	now := time.Now()
	if !l.fired || now.Sub(l.last) >= l.minInterval {
		l.fired = true
		l.last = now
		return true
	}
	return false
}
