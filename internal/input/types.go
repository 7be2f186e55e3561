// Package input provides access to Linux input devices: reading raw events
// and capabilities from evdev nodes and injecting events through uinput.
package input

import (
	"errors"
	"time"
)

var (
	// ErrUnsupportedPlatform is returned when evdev/uinput are unavailable
	ErrUnsupportedPlatform = errors.New("input devices are only supported on linux")

	// ErrTemporary marks read failures worth retrying (EINTR, EAGAIN)
	ErrTemporary = errors.New("temporary read failure")
)

// RawEvent is an event as the kernel reports it
type RawEvent struct {
	// Time is the kernel timestamp as an offset from the Unix epoch
	Time  time.Duration
	Type  uint16
	Code  uint16
	Value int32
}

// Querier answers capability questions about a device
type Querier interface {
	HasType(eventType uint16) bool
	HasCode(eventType, code uint16) bool
}

// Source delivers events from a device. ReadEvent blocks until the next
// event arrives and cannot be interrupted mid-call.
type Source interface {
	ReadEvent() (RawEvent, error)
}

// Sink accepts synthetic events, as a virtual device does
type Sink interface {
	Write(eventType, code uint16, value int32) error
	Synchronize() error
}
