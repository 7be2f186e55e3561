// Package player replays a recorded macro onto a virtual input device with
// the recorded timing between events.
package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"evmacro/internal/input"
	"evmacro/internal/macro"
	"evmacro/internal/metrics"
)

// ErrInvalidSpeed indicates a non-positive speed multiplier
var ErrInvalidSpeed = errors.New("invalid speed multiplier")

// Sleeper waits between events. Sleep returns early with ctx.Err() when
// ctx is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options configure a Player
type Options struct {
	Sleeper Sleeper

	// Speed scales playback; 1 reproduces the recording exactly, 2 plays it
	// twice as fast. Zero means 1.
	Speed float64

	Metrics *metrics.Player
}

// Player writes events to a sink on the recorded schedule
type Player struct {
	sink  input.Sink
	opts  Options
	speed float64
}

// New creates a player for sink
func New(sink input.Sink, opts Options) (*Player, error) {
	speed := opts.Speed
	if speed == 0 {
		speed = 1
	}
	if !(speed > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, opts.Speed)
	}
	if opts.Sleeper == nil {
		opts.Sleeper = timerSleeper{}
	}
	return &Player{sink: sink, opts: opts, speed: speed}, nil
}

// Play emits every event of l in order. Each event is written and then
// synchronized; before the next one the player waits for the recorded gap.
// A sink failure stops playback at once; events already emitted stay
// emitted. Cancelling ctx stops playback between events.
func (p *Player) Play(ctx context.Context, l *macro.EventList) error {
	events := l.Events
	if len(events) == 0 {
		log.Println("Player: Nothing to play")
		return nil
	}

	log.Printf("Player: Replaying %d events over %v", len(events), p.scale(l.Duration()))
	start := time.Now()

	for i, e := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.sink.Write(e.Type, e.Code, e.Value); err != nil {
			return macro.DeviceError(macro.StagePlayback, fmt.Errorf("event %d: %w", i, err))
		}
		if err := p.sink.Synchronize(); err != nil {
			return macro.DeviceError(macro.StagePlayback, fmt.Errorf("event %d: sync: %w", i, err))
		}
		p.opts.Metrics.Replayed()

		if i+1 == len(events) {
			break
		}
		gap := p.scale(events[i+1].Time - e.Time)
		if gap <= 0 {
			continue
		}
		if err := p.opts.Sleeper.Sleep(ctx, gap); err != nil {
			return err
		}
		p.opts.Metrics.Slept(gap.Seconds())
	}

	log.Printf("Player: Finished in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

func (p *Player) scale(d time.Duration) time.Duration {
	if p.speed == 1 {
		return d
	}
	return time.Duration(float64(d) / p.speed)
}
