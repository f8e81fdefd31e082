// Package control runs the control-rate side of the engine: it samples the
// panel, publishes parameters and feeds note events to the voice allocator.
package control

import (
	"context"
	"time"

	"github.com/icco/hathor/internal/params"
	"github.com/icco/hathor/internal/voice"
)

// Allocator is the part of the voice allocator the loop drives.
type Allocator interface {
	NoteOn(note, velocity uint8)
	NoteOff(note uint8)
	ReleaseAll()
}

// Option configures a Loop.
type Option func(*Loop)

// WithCutoffCurve selects the cutoff knob response.
func WithCutoffCurve(c params.Curve) Option {
	return func(l *Loop) { l.cutoffCurve = c }
}

// WithEventHook registers fn to observe every dispatched event. It runs on
// the loop goroutine.
func WithEventHook(fn func(Event)) Option {
	return func(l *Loop) { l.hook = fn }
}

// Loop is the control-rate iteration. It is the only writer of the store and
// the only caller of the allocator.
type Loop struct {
	store  *params.Store
	alloc  Allocator
	inputs Inputs
	events EventSource

	cutoffCurve params.Curve
	hook        func(Event)
}

// NewLoop wires a loop. events may be nil when no note input exists.
func NewLoop(store *params.Store, alloc Allocator, inputs Inputs, events EventSource, opts ...Option) *Loop {
	l := &Loop{
		store:  store,
		alloc:  alloc,
		inputs: inputs,
		events: events,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run calls Tick every interval until ctx is done.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick performs one iteration: read the panel, drain pending events, then
// recompute derived entries.
func (l *Loop) Tick() {
	l.readPanel()
	l.drain()
	l.derive()
}

func (l *Loop) knob(ch Channel) float64 {
	return params.Invert(l.inputs.Analog(ch))
}

func (l *Loop) readPanel() {
	s := l.store

	s.FilterOn.Store(!l.inputs.Level(FilterSwitch))
	s.Resonance.Store(params.Map(l.knob(ResonanceKnob), 0, params.MaxResonance, params.Linear))
	s.Cutoff.Store(params.Map(l.knob(CutoffKnob), 0, params.MaxCutoffHz, l.cutoffCurve))

	s.ModOn.Store(!l.inputs.Level(LFOSwitch))
	s.ModRate.Store(params.Map(l.knob(LFORateKnob), 0, params.MaxModRateHz, params.Linear))
	s.ModDepth.Store(l.knob(LFODepthKnob))

	s.Detune.Store(l.knob(DetuneKnob))

	s.ChorusRate.Store(l.knob(ChorusRateKnob))
	s.ChorusDepth.Store(l.knob(ChorusDepthKnob))

	s.Shape.Store(uint32(params.ShapeIndex(l.knob(ShapeKnob))))
	s.Attack.Store(params.Map(l.knob(AttackKnob), 0, params.MaxSegmentTime, params.Linear))
	s.DecayRelease.Store(params.Map(l.knob(DecayReleaseKnob), 0, params.MaxSegmentTime, params.Linear))

	s.Wet.Store(params.Map(l.knob(ReverbKnob), 0, 1, params.Linear))
	s.Master.Store(l.knob(MasterKnob))
}

func (l *Loop) drain() {
	if l.events == nil {
		return
	}
	for l.events.HasPendingEvents() {
		l.Dispatch(l.events.PopEvent())
	}
}

// Dispatch hands one event to the allocator. Other events are ignored.
func (l *Loop) Dispatch(ev Event) {
	switch ev.Kind {
	case NoteOn:
		l.alloc.NoteOn(ev.Note, ev.Velocity)
	case NoteOff:
		l.alloc.NoteOff(ev.Note)
	case AllNotesOff:
		l.alloc.ReleaseAll()
	default:
	}
	if l.hook != nil {
		l.hook(ev)
	}
}

func (l *Loop) derive() {
	l.store.Dry.Store(params.DryFromWet(l.store.Wet.Load()))
}

var _ Allocator = (*voice.Allocator)(nil)
