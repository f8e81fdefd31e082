// Package params holds the values the control loop publishes for the audio
// path to read.
//
// Every entry is an independent atomic word. There is exactly one writer (the
// control loop) and any number of readers; readers may see a stale value but
// never a torn one.
package params

import (
	"math"
	"sync/atomic"
)

// Float is a float64 that can be written and read concurrently.
type Float struct {
	bits atomic.Uint64
}

// Load returns the current value.
func (f *Float) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Store publishes v.
func (f *Float) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Store is the process-wide parameter set. The zero value is silent: every
// level is 0 and every flag is off.
type Store struct {
	Master    Float
	Cutoff    Float // Hz
	Resonance Float
	FilterOn  atomic.Bool

	ModRate  Float // Hz
	ModDepth Float
	ModOn    atomic.Bool

	Detune Float
	Shape  atomic.Uint32

	Attack       Float // seconds
	DecayRelease Float // seconds

	Dry Float
	Wet Float

	ChorusRate  Float // Hz
	ChorusDepth Float
}

// NewStore returns a store with every entry at its neutral value.
func NewStore() *Store {
	return &Store{}
}

// Snapshot is a by-value copy of a Store.
type Snapshot struct {
	Master       float64
	Cutoff       float64
	Resonance    float64
	FilterOn     bool
	ModRate      float64
	ModDepth     float64
	ModOn        bool
	Detune       float64
	Shape        uint8
	Attack       float64
	DecayRelease float64
	Dry          float64
	Wet          float64
	ChorusRate   float64
	ChorusDepth  float64
}

// Snapshot reads every entry once. Entries are read independently, so the
// result is not a transaction across fields.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Master:       s.Master.Load(),
		Cutoff:       s.Cutoff.Load(),
		Resonance:    s.Resonance.Load(),
		FilterOn:     s.FilterOn.Load(),
		ModRate:      s.ModRate.Load(),
		ModDepth:     s.ModDepth.Load(),
		ModOn:        s.ModOn.Load(),
		Detune:       s.Detune.Load(),
		Shape:        uint8(s.Shape.Load()), //nolint:gosec // only ever written from a uint8
		Attack:       s.Attack.Load(),
		DecayRelease: s.DecayRelease.Load(),
		Dry:          s.Dry.Load(),
		Wet:          s.Wet.Load(),
		ChorusRate:   s.ChorusRate.Load(),
		ChorusDepth:  s.ChorusDepth.Load(),
	}
}
