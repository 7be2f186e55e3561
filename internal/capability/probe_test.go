package capability

import (
	"testing"

	"evmacro/internal/input"
	"evmacro/internal/macro"
)

type fakeDevice struct {
	codes map[uint16][]uint16
	calls int
}

func (f *fakeDevice) HasType(eventType uint16) bool {
	f.calls++
	_, ok := f.codes[eventType]
	return ok
}

func (f *fakeDevice) HasCode(eventType, code uint16) bool {
	f.calls++
	for _, c := range f.codes[eventType] {
		if c == code {
			return true
		}
	}
	return false
}

func mouse() *fakeDevice {
	return &fakeDevice{codes: map[uint16][]uint16{
		input.EvRel: {1, 0, 8},
		input.EvKey: {0x110, 0x111},
		input.EvSyn: {0},
		0x1e:        {0}, // not a kernel type, never asked
	}}
}

func TestProbe(t *testing.T) {
	caps := Probe(mouse())

	wantTypes := []int32{int32(input.EvSyn), int32(input.EvKey), int32(input.EvRel)}
	if len(caps.EventTypes) != len(wantTypes) {
		t.Fatalf("Expected types %v, got %v", wantTypes, caps.EventTypes)
	}
	for i := range wantTypes {
		if caps.EventTypes[i] != wantTypes[i] {
			t.Errorf("Expected type %d at %d, got %d", wantTypes[i], i, caps.EventTypes[i])
		}
	}

	wantCodes := []macro.CodePair{
		{Type: 0, Code: 0},
		{Type: 1, Code: 0x110},
		{Type: 1, Code: 0x111},
		{Type: 2, Code: 0},
		{Type: 2, Code: 1},
		{Type: 2, Code: 8},
	}
	if len(caps.EventCodes) != len(wantCodes) {
		t.Fatalf("Expected codes %v, got %v", wantCodes, caps.EventCodes)
	}
	for i := range wantCodes {
		if caps.EventCodes[i] != wantCodes[i] {
			t.Errorf("Expected code %v at %d, got %v", wantCodes[i], i, caps.EventCodes[i])
		}
	}
}

func TestProbeDeterministic(t *testing.T) {
	a := Probe(mouse())
	b := Probe(mouse())

	if len(a.EventCodes) != len(b.EventCodes) || len(a.EventTypes) != len(b.EventTypes) {
		t.Fatal("Expected identical manifests for identical devices")
	}
	for i := range a.EventCodes {
		if a.EventCodes[i] != b.EventCodes[i] {
			t.Errorf("Expected identical code at %d, got %v and %v", i, a.EventCodes[i], b.EventCodes[i])
		}
	}
}

func TestProbeSkipsCodesOfUnsupportedTypes(t *testing.T) {
	dev := &fakeDevice{codes: map[uint16][]uint16{}}
	caps := Probe(dev)

	if len(caps.EventTypes) != 0 || len(caps.EventCodes) != 0 {
		t.Errorf("Expected empty manifest, got %+v", caps)
	}
	if dev.calls != len(input.KnownTypes) {
		t.Errorf("Expected only %d type queries, got %d calls", len(input.KnownTypes), dev.calls)
	}
}
