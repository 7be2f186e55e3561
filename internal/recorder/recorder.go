// Package recorder captures input events from a device into a macro.
package recorder

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"evmacro/internal/capability"
	"evmacro/internal/input"
	"evmacro/internal/macro"
	"evmacro/internal/metrics"
	"evmacro/internal/protocol"
)

// State is the phase a Recorder is in
type State int

const (
	Idle State = iota
	Countdown
	Recording
	Finalizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Countdown:
		return "countdown"
	case Recording:
		return "recording"
	case Finalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Sleeper pauses the countdown; tests substitute a fake
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Options configure a Recorder
type Options struct {
	// CountdownSteps is the number of countdown ticks before capture starts
	CountdownSteps int

	// CountdownInterval is the time between ticks
	CountdownInterval time.Duration

	Sleeper Sleeper

	// Prompt receives operator-facing text; defaults to stdout
	Prompt io.Writer

	// OnEvent, if set, is called for every recorded event
	OnEvent func(macro.Event)

	Metrics *metrics.Recorder
}

// DefaultOptions returns a 3 x 1s countdown
func DefaultOptions() Options {
	return Options{
		CountdownSteps:    3,
		CountdownInterval: time.Second,
	}
}

// Recorder runs one capture session: probe, countdown, record until
// stopped, then write the container to the destination.
type Recorder struct {
	mu    sync.Mutex
	state State

	src     input.Source
	querier input.Querier
	dst     io.Writer
	opts    Options
	session string
}

// New creates a recorder reading src, probing q, and writing to dst. dst must
// already be open; an unwritable destination is reported before recording.
func New(src input.Source, q input.Querier, dst io.Writer, opts Options) *Recorder {
	if opts.Sleeper == nil {
		opts.Sleeper = realSleeper{}
	}
	if opts.Prompt == nil {
		opts.Prompt = os.Stdout
	}
	return &Recorder{
		src:     src,
		querier: q,
		dst:     dst,
		opts:    opts,
		session: uuid.NewString(),
	}
}

// State returns the current phase
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Session returns the ID used to tag this run's log lines
func (r *Recorder) Session() string {
	return r.session
}

func (r *Recorder) setState(s State) {
	r.mu.Lock()
	prev := r.state
	r.state = s
	r.mu.Unlock()
	log.Printf("Recorder: [%s] %s -> %s", r.session, prev, s)
}

// Run records until stop is requested and returns the list that was
// written. The stop flag is checked once per event: a read already blocked
// in the kernel completes before the flag is seen.
func (r *Recorder) Run(stop *StopFlag) (*macro.EventList, error) {
	caps := capability.Probe(r.querier)
	log.Printf("Recorder: [%s] Probed %d event types, %d codes", r.session, len(caps.EventTypes), len(caps.EventCodes))

	r.setState(Countdown)
	r.countdown()

	r.setState(Recording)
	list, err := r.capture(caps, stop)
	if err != nil {
		return nil, err
	}

	r.setState(Finalizing)
	fmt.Fprintf(r.opts.Prompt, "\nFinished recording (%d events)\n", list.Len())
	if err := protocol.Encode(r.dst, list); err != nil {
		return nil, err
	}
	log.Printf("Recorder: [%s] Wrote %d events spanning %v", r.session, list.Len(), list.Duration())
	return list, nil
}

func (r *Recorder) countdown() {
	if r.opts.CountdownSteps <= 0 {
		color.New(color.FgGreen).Fprintln(r.opts.Prompt, "Recording started")
		return
	}

	fmt.Fprint(r.opts.Prompt, "(CTRL-C to end) Starting recording in")
	for i := r.opts.CountdownSteps; i > 0; i-- {
		if i > 1 {
			fmt.Fprintf(r.opts.Prompt, " %d,", i)
		} else {
			fmt.Fprint(r.opts.Prompt, " 1")
		}
		r.opts.Sleeper.Sleep(r.opts.CountdownInterval)
	}
	fmt.Fprintln(r.opts.Prompt)
	color.New(color.FgGreen).Fprintln(r.opts.Prompt, "Recording started")
}

func (r *Recorder) capture(caps macro.Capabilities, stop *StopFlag) (*macro.EventList, error) {
	list := macro.NewEventList(caps)
	var clock Clock

	for !stop.Requested() {
		raw, err := r.src.ReadEvent()
		if err != nil {
			if errors.Is(err, input.ErrTemporary) {
				continue
			}
			return nil, macro.DeviceError(macro.StageCapture, err)
		}

		if !Retain(raw.Type) {
			r.opts.Metrics.Dropped(raw.Type)
			continue
		}

		rel, anomaly := clock.Relative(raw.Time)
		if anomaly != nil {
			log.Printf("Recorder: [%s] Warning: %v, clamping to 0", r.session, anomaly)
			r.opts.Metrics.ClockAnomaly()
		}

		ev := macro.Event{Time: rel, Type: raw.Type, Code: raw.Code, Value: raw.Value}
		list.Push(ev)
		r.opts.Metrics.Captured()
		if r.opts.OnEvent != nil {
			r.opts.OnEvent(ev)
		}
	}
	return list, nil
}
