package macro

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestEventListPush(t *testing.T) {
	l := NewEventList(Capabilities{EventTypes: []int32{1}})
	if l.Len() != 0 {
		t.Errorf("Expected empty list, got %d events", l.Len())
	}
	if l.Duration() != 0 {
		t.Errorf("Expected zero duration for empty list, got %v", l.Duration())
	}

	l.Push(Event{Time: 0, Type: 1, Code: 30, Value: 1})
	l.Push(Event{Time: 40 * time.Millisecond, Type: 1, Code: 30, Value: 0})

	if l.Len() != 2 {
		t.Errorf("Expected 2 events, got %d", l.Len())
	}
	if l.Duration() != 40*time.Millisecond {
		t.Errorf("Expected duration 40ms, got %v", l.Duration())
	}
}

func TestEventListValidate(t *testing.T) {
	tests := []struct {
		name    string
		times   []time.Duration
		wantErr bool
	}{
		{"empty", nil, false},
		{"single", []time.Duration{0}, false},
		{"equal times", []time.Duration{0, 10, 10, 50}, false},
		{"nonzero start", []time.Duration{5, 10}, true},
		{"decreasing", []time.Duration{0, 20, 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewEventList(Capabilities{})
			for _, ts := range tt.times {
				l.Push(Event{Time: ts * time.Millisecond})
			}
			err := l.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEventListUncovered(t *testing.T) {
	l := NewEventList(Capabilities{
		EventTypes: []int32{1, 2},
		EventCodes: []CodePair{{Type: 1, Code: 30}, {Type: 2, Code: 0}},
	})
	l.Push(Event{Type: 1, Code: 30, Value: 1})
	l.Push(Event{Type: 2, Code: 1, Value: 5})
	l.Push(Event{Type: 2, Code: 1, Value: -5})
	l.Push(Event{Type: 1, Code: 48, Value: 1})

	got := l.Uncovered()
	want := []CodePair{{Type: 1, Code: 48}, {Type: 2, Code: 1}}
	if len(got) != len(want) {
		t.Fatalf("Expected %d uncovered pairs, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected uncovered[%d]=%v, got %v", i, want[i], got[i])
		}
	}

	if !l.Capabilities.HasCode(1, 30) {
		t.Error("Expected manifest to contain (1, 30)")
	}
	if l.Capabilities.HasCode(1, 48) {
		t.Error("Expected manifest not to contain (1, 48)")
	}
}

func TestErrorKinds(t *testing.T) {
	err := FormatError(StageDecode, io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrFormat) {
		t.Error("Expected errors.Is(err, ErrFormat)")
	}
	if errors.Is(err, ErrIO) {
		t.Error("Expected format error not to match ErrIO")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("Expected wrapped cause to be reachable")
	}

	var me *Error
	if !errors.As(err, &me) {
		t.Fatal("Expected errors.As to find *Error")
	}
	if me.Stage != StageDecode {
		t.Errorf("Expected stage %q, got %q", StageDecode, me.Stage)
	}
	if want := "decode: format error: unexpected EOF"; err.Error() != want {
		t.Errorf("Expected message %q, got %q", want, err.Error())
	}
}

func TestClockAnomalyMessage(t *testing.T) {
	w := ClockAnomaly{Epoch: 2 * time.Second, Timestamp: 1500 * time.Millisecond}
	if want := "event timestamp 1.5s is 500ms before recording start"; w.Error() != want {
		t.Errorf("Expected %q, got %q", want, w.Error())
	}
}
