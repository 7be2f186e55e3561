package recorder

import (
	"sync/atomic"
	"time"

	"evmacro/internal/input"
	"evmacro/internal/macro"
)

// Retain reports whether events of a category are worth recording.
// Only key state and relative or absolute motion are kept; sync markers,
// misc scancodes, LEDs and the rest are dropped.
func Retain(eventType uint16) bool {
	switch eventType {
	case input.EvKey, input.EvRel, input.EvAbs:
		return true
	}
	return false
}

// Clock turns kernel timestamps into offsets from the first retained event
type Clock struct {
	epoch   time.Duration
	latched bool
}

// Relative returns the time of ts since the epoch, latching the epoch on the
// first call. A timestamp before the epoch yields zero and a ClockAnomaly.
func (c *Clock) Relative(ts time.Duration) (time.Duration, *macro.ClockAnomaly) {
	if !c.latched {
		c.epoch = ts
		c.latched = true
		return 0, nil
	}
	if ts < c.epoch {
		return 0, &macro.ClockAnomaly{Epoch: c.epoch, Timestamp: ts}
	}
	return ts - c.epoch, nil
}

// StopFlag is set from a signal handler and polled by the capture loop
type StopFlag struct {
	stop atomic.Bool
}

// Request asks the capture loop to finish after the current read
func (f *StopFlag) Request() {
	f.stop.Store(true)
}

// Requested reports whether a stop was requested
func (f *StopFlag) Requested() bool {
	return f.stop.Load()
}
