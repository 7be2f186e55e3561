// Package metrics counts what capture and playback did, for export to a
// node_exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"evmacro/internal/input"
)

const namespace = "evmacro"

// Registry owns the collectors of one process run
type Registry struct {
	reg *prometheus.Registry

	Recorder *Recorder
	Player   *Player
}

// NewRegistry creates a registry with capture and playback collectors
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg:      reg,
		Recorder: newRecorder(),
		Player:   newPlayer(),
	}
	reg.MustRegister(
		r.Recorder.captured,
		r.Recorder.dropped,
		r.Recorder.anomalies,
		r.Player.replayed,
		r.Player.slept,
	)
	return r
}

// Gatherer exposes the registry for tests and exporters
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile atomically writes all metrics to path in text format
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

// Recorder holds capture counters. A nil *Recorder discards updates.
type Recorder struct {
	captured  prometheus.Counter
	dropped   *prometheus.CounterVec
	anomalies prometheus.Counter
}

func newRecorder() *Recorder {
	return &Recorder{
		captured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "events_total",
			Help:      "Events appended to the recording.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "dropped_total",
			Help:      "Raw events discarded by the category filter.",
		}, []string{"type"}),
		anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "clock_anomalies_total",
			Help:      "Events timestamped before the recording epoch and clamped to zero.",
		}),
	}
}

func (m *Recorder) Captured() {
	if m != nil {
		m.captured.Inc()
	}
}

func (m *Recorder) Dropped(eventType uint16) {
	if m != nil {
		m.dropped.WithLabelValues(input.TypeName(eventType)).Inc()
	}
}

func (m *Recorder) ClockAnomaly() {
	if m != nil {
		m.anomalies.Inc()
	}
}

// Player holds playback counters. A nil *Player discards updates.
type Player struct {
	replayed prometheus.Counter
	slept    prometheus.Counter
}

func newPlayer() *Player {
	return &Player{
		replayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "events_total",
			Help:      "Events written and synchronized to the virtual device.",
		}),
		slept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "sleep_seconds_total",
			Help:      "Time spent waiting between events.",
		}),
	}
}

func (m *Player) Replayed() {
	if m != nil {
		m.replayed.Inc()
	}
}

func (m *Player) Slept(seconds float64) {
	if m != nil {
		m.slept.Add(seconds)
	}
}
