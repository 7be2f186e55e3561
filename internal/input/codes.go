package input

import "fmt"

// Event types from linux/input-event-codes.h
const (
	EvSyn      uint16 = 0x00
	EvKey      uint16 = 0x01
	EvRel      uint16 = 0x02
	EvAbs      uint16 = 0x03
	EvMsc      uint16 = 0x04
	EvSw       uint16 = 0x05
	EvLed      uint16 = 0x11
	EvSnd      uint16 = 0x12
	EvRep      uint16 = 0x14
	EvFf       uint16 = 0x15
	EvPwr      uint16 = 0x16
	EvFfStatus uint16 = 0x17
	EvMax      uint16 = 0x1f
)

// SynReport terminates a batch of events
const SynReport uint16 = 0

// AbsMtSlot selects the multitouch slot subsequent ABS_MT_* events apply to
const AbsMtSlot uint16 = 0x2f

// Highest code per type
const (
	SynMax      uint16 = 0x0f
	KeyMax      uint16 = 0x2ff
	RelMax      uint16 = 0x0f
	AbsMax      uint16 = 0x3f
	MscMax      uint16 = 0x07
	SwMax       uint16 = 0x10
	LedMax      uint16 = 0x0f
	SndMax      uint16 = 0x07
	RepMax      uint16 = 0x01
	FfMax       uint16 = 0x7f
	FfStatusMax uint16 = 0x01
)

// KnownTypes lists every event type the kernel defines, ascending
var KnownTypes = []uint16{EvSyn, EvKey, EvRel, EvAbs, EvMsc, EvSw, EvLed, EvSnd, EvRep, EvFf, EvPwr, EvFfStatus}

var typeInfo = map[uint16]struct {
	name    string
	maxCode uint16
	codes   bool
}{
	EvSyn:      {"EV_SYN", SynMax, true},
	EvKey:      {"EV_KEY", KeyMax, true},
	EvRel:      {"EV_REL", RelMax, true},
	EvAbs:      {"EV_ABS", AbsMax, true},
	EvMsc:      {"EV_MSC", MscMax, true},
	EvSw:       {"EV_SW", SwMax, true},
	EvLed:      {"EV_LED", LedMax, true},
	EvSnd:      {"EV_SND", SndMax, true},
	EvRep:      {"EV_REP", RepMax, true},
	EvFf:       {"EV_FF", FfMax, true},
	EvPwr:      {"EV_PWR", 0, false},
	EvFfStatus: {"EV_FF_STATUS", FfStatusMax, true},
}

// Codes returns every code defined for an event type, ascending.
// Types without codes (EV_PWR) and unknown types return nil.
func Codes(eventType uint16) []uint16 {
	info, ok := typeInfo[eventType]
	if !ok || !info.codes {
		return nil
	}
	codes := make([]uint16, 0, int(info.maxCode)+1)
	for c := uint16(0); c <= info.maxCode; c++ {
		codes = append(codes, c)
	}
	return codes
}

// hasCodeMask reports whether the kernel keeps a per-code bitmask for the
// type. Only these types can be queried with EVIOCGBIT(type) or configured
// with a UI_SET_*BIT request; the kernel rejects the rest with EINVAL.
func hasCodeMask(eventType uint16) bool {
	switch eventType {
	case EvKey, EvRel, EvAbs, EvMsc, EvLed, EvSnd, EvFf, EvSw:
		return true
	}
	return false
}

// maskTypes returns the types set in a type bitmask that have a code mask
// to query, ascending
func maskTypes(types bitmap) []uint16 {
	var out []uint16
	for _, t := range KnownTypes {
		if types.has(t) && hasCodeMask(t) {
			out = append(out, t)
		}
	}
	return out
}

// impliedCode reports whether code exists for a type without a code mask
// (EV_SYN, EV_REP, EV_FF_STATUS). A device supporting such a type supports
// all of its codes.
func impliedCode(eventType, code uint16) bool {
	info, ok := typeInfo[eventType]
	return ok && info.codes && !hasCodeMask(eventType) && code <= info.maxCode
}

// MaxCode returns the highest code for an event type
func MaxCode(eventType uint16) uint16 {
	return typeInfo[eventType].maxCode
}

// TypeName returns the kernel name of an event type, e.g. "EV_KEY"
func TypeName(eventType uint16) string {
	if info, ok := typeInfo[eventType]; ok {
		return info.name
	}
	return fmt.Sprintf("EV_0x%02x", eventType)
}
