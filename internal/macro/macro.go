// Package macro defines the recorded input macro: a device capability
// manifest plus the ordered events captured from that device.
package macro

import (
	"fmt"
	"sort"
	"time"
)

// Event is one input event captured from a device
type Event struct {
	// Time is the delay since the first captured event
	Time time.Duration

	// Type is the event category (EV_KEY, EV_REL, ...)
	Type uint16

	// Code identifies the key or axis within the category
	Code uint16

	// Value is the key state, relative delta or absolute position
	Value int32
}

// CodePair is a (type, code) pair a device declares support for
type CodePair struct {
	Type int32
	Code uint16
}

// Capabilities is the manifest of what the source device can produce.
// It is a configuration hint for the replay target and is never used to
// validate recorded events.
type Capabilities struct {
	EventTypes []int32
	EventCodes []CodePair
}

// HasCode reports whether the manifest lists the given pair
func (c Capabilities) HasCode(eventType, code uint16) bool {
	for _, p := range c.EventCodes {
		if p.Type == int32(eventType) && p.Code == code {
			return true
		}
	}
	return false
}

// EventList is the unit that is recorded, persisted and replayed
type EventList struct {
	Capabilities Capabilities
	Events       []Event
}

// NewEventList creates an empty list for a device manifest
func NewEventList(c Capabilities) *EventList {
	return &EventList{Capabilities: c}
}

// Push appends an event
func (l *EventList) Push(e Event) {
	l.Events = append(l.Events, e)
}

// Len returns the number of events
func (l *EventList) Len() int {
	return len(l.Events)
}

// Duration returns the time of the last event, i.e. the playback length
func (l *EventList) Duration() time.Duration {
	if len(l.Events) == 0 {
		return 0
	}
	return l.Events[len(l.Events)-1].Time
}

// Validate checks the ordering invariant: the first event is at zero and
// times never decrease.
func (l *EventList) Validate() error {
	for i, e := range l.Events {
		if i == 0 {
			if e.Time != 0 {
				return fmt.Errorf("first event at %v, expected 0", e.Time)
			}
			continue
		}
		if prev := l.Events[i-1].Time; e.Time < prev {
			return fmt.Errorf("event %d at %v precedes event %d at %v", i, e.Time, i-1, prev)
		}
	}
	return nil
}

// Uncovered returns the distinct (type, code) pairs that occur in the
// events but are missing from the manifest, sorted by type then code.
func (l *EventList) Uncovered() []CodePair {
	declared := make(map[CodePair]struct{}, len(l.Capabilities.EventCodes))
	for _, p := range l.Capabilities.EventCodes {
		declared[p] = struct{}{}
	}

	seen := make(map[CodePair]struct{})
	var missing []CodePair
	for _, e := range l.Events {
		p := CodePair{Type: int32(e.Type), Code: e.Code}
		if _, ok := declared[p]; ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		missing = append(missing, p)
	}

	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Type != missing[j].Type {
			return missing[i].Type < missing[j].Type
		}
		return missing[i].Code < missing[j].Code
	})
	return missing
}
