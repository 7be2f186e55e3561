package input

import (
	"sort"

	"evmacro/internal/macro"
)

// VirtualOptions tune the uinput device
type VirtualOptions struct {
	// AbsMin and AbsMax bound every absolute axis except ABS_MT_SLOT
	AbsMin int32
	AbsMax int32
}

// mtSlots is the number of multitouch slots a virtual device declares
const mtSlots = 10

// absRange returns the declared range of an absolute axis. ABS_MT_SLOT is a
// slot index rather than a position, so it gets a small fixed range.
func absRange(code uint16, opts VirtualOptions) (lo, hi int32) {
	if code == AbsMtSlot {
		return 0, mtSlots - 1
	}
	return opts.AbsMin, opts.AbsMax
}

type codeBit struct {
	eventType uint16
	code      uint16
}

type bitPlan struct {
	types []uint16
	codes []codeBit
}

// planBits turns a manifest into the UI_SET_* calls for a virtual device.
// Types and codes the kernel does not know are skipped.
func planBits(caps macro.Capabilities) bitPlan {
	if len(caps.EventTypes) == 0 && len(caps.EventCodes) == 0 {
		return fallbackPlan()
	}

	types := newBitmap(EvMax)
	for _, t := range caps.EventTypes {
		if t < 0 || t > int32(EvMax) {
			continue
		}
		types.set(uint16(t))
	}

	var plan bitPlan
	seen := make(map[codeBit]struct{})
	for _, p := range caps.EventCodes {
		if p.Type < 0 || p.Type > int32(EvMax) {
			continue
		}
		t := uint16(p.Type)
		if !hasCodeMask(t) || p.Code > MaxCode(t) {
			continue
		}
		cb := codeBit{eventType: t, code: p.Code}
		if _, ok := seen[cb]; ok {
			continue
		}
		seen[cb] = struct{}{}
		types.set(t)
		plan.codes = append(plan.codes, cb)
	}

	for _, t := range KnownTypes {
		if types.has(t) {
			plan.types = append(plan.types, t)
		}
	}
	sort.Slice(plan.codes, func(i, j int) bool {
		if plan.codes[i].eventType != plan.codes[j].eventType {
			return plan.codes[i].eventType < plan.codes[j].eventType
		}
		return plan.codes[i].code < plan.codes[j].code
	})
	return plan
}

func fallbackPlan() bitPlan {
	plan := bitPlan{types: []uint16{EvSyn, EvKey, EvRel, EvAbs}}
	for _, t := range plan.types[1:] {
		for _, c := range Codes(t) {
			plan.codes = append(plan.codes, codeBit{eventType: t, code: c})
		}
	}
	return plan
}
