package common

import (
	"time"

	"github.com/pkg/errors"
)

// MaxFrame bounds the wall time a single Advance will account for. Anything
// beyond it (a blocked console, a dragged window) is dropped rather than
// replayed as a burst of instructions.
const MaxFrame = 250 * time.Millisecond

// Clock converts elapsed wall time into instruction steps and timer ticks.
// The two rates accumulate independently and carry their remainders.
type Clock struct {
	cpuStep   time.Duration
	timerStep time.Duration
	cpuAcc    time.Duration
	timerAcc  time.Duration
}

// NewClock returns a clock for the given instruction and timer rates in Hz.
func NewClock(cpuHz, timerHz int) (*Clock, error) {
	if cpuHz <= 0 || cpuHz > int(time.Second) {
		return nil, errors.Errorf("cpu rate out of range: %d Hz", cpuHz)
	}
	if timerHz <= 0 || timerHz > int(time.Second) {
		return nil, errors.Errorf("timer rate out of range: %d Hz", timerHz)
	}
	return &Clock{
		cpuStep:   time.Second / time.Duration(cpuHz),
		timerStep: time.Second / time.Duration(timerHz),
	}, nil
}

// Advance adds dt of elapsed time and returns how many instruction steps
// and timer ticks are now due.
func (c *Clock) Advance(dt time.Duration) (cycles, ticks int) {
	if dt < 0 {
		dt = 0
	}
	if dt > MaxFrame {
		dt = MaxFrame
	}

	c.cpuAcc += dt
	c.timerAcc += dt

	cycles = int(c.cpuAcc / c.cpuStep)
	c.cpuAcc -= time.Duration(cycles) * c.cpuStep
	ticks = int(c.timerAcc / c.timerStep)
	c.timerAcc -= time.Duration(ticks) * c.timerStep
	return cycles, ticks
}

// FramePeriod is the interval between timer ticks, which the run loop also
// uses as its frame rate.
func (c *Clock) FramePeriod() time.Duration {
	return c.timerStep
}
