package editor

import (
	"time"
)

// DefaultAutoSaveInterval is the auto-save period used when none is configured.
const DefaultAutoSaveInterval = time.Second

// AutoSaver is the session's auto-save timer. It does not save anything itself: while enabled its channel delivers
// ticks that the owner's event loop turns into Session.AutoSaveTick calls, so saving happens on the loop goroutine.
type AutoSaver struct {
	interval time.Duration
	ticker   *time.Ticker
}

// NewAutoSaver returns a stopped timer with the given interval.
func NewAutoSaver(interval time.Duration) *AutoSaver {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	return &AutoSaver{interval: interval}
}

// Interval returns the tick period.
func (a *AutoSaver) Interval() time.Duration {
	return a.interval
}

// Enabled reports whether the timer is running.
func (a *AutoSaver) Enabled() bool {
	return a.ticker != nil
}

// C returns the tick channel, or nil while the timer is stopped. A nil channel blocks forever in a select.
func (a *AutoSaver) C() <-chan time.Time {
	if a.ticker == nil {
		return nil
	}
	return a.ticker.C
}

func (a *AutoSaver) start() {
	if a.ticker != nil {
		return
	}
	a.ticker = time.NewTicker(a.interval)
}

func (a *AutoSaver) stop() {
	if a.ticker == nil {
		return
	}
	a.ticker.Stop()
	a.ticker = nil
}
