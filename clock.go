package kartoffels

import (
	"time"

	"github.com/kartoffels/kartoffels/internal/engine"
	"github.com/kartoffels/kartoffels/internal/interfaces"
)

// AutoClock paces a world off wall-clock time at engine.TicksPerSecondAuto,
// the "automatic metronome" mode. ManualClock (testing.go) is the other
// implementation, used by acceptance tests that need exact tick control.
type AutoClock struct {
	ticker *time.Ticker
}

// NewAutoClock creates a clock ticking at the engine's fixed auto rate.
func NewAutoClock() *AutoClock {
	return &AutoClock{ticker: time.NewTicker(engine.TickInterval)}
}

// Wait implements interfaces.Clock.
func (c *AutoClock) Wait(stop <-chan struct{}) bool {
	select {
	case <-c.ticker.C:
		return true
	case <-stop:
		return false
	}
}

// Stop releases the underlying ticker. Safe to call multiple times.
func (c *AutoClock) Stop() {
	c.ticker.Stop()
}

var _ interfaces.Clock = (*AutoClock)(nil)
