// Package voice owns the fixed pool of synthesis voices and the round-robin
// policy that assigns incoming notes to them.
package voice

import (
	"sync/atomic"

	"github.com/icco/hathor/internal/dsp"
	"github.com/icco/hathor/internal/params"
)

// DefaultSustainLevel is the envelope plateau shared by every voice.
const DefaultSustainLevel = 0.25

// Voice is one oscillator and envelope pair.
//
// gate, note, pitch and strikes are written by the allocator on the control
// goroutine and read by the audio path. The oscillator and envelope belong to
// the audio path alone.
type Voice struct {
	gate    atomic.Bool
	note    atomic.Uint32
	pitch   params.Float
	strikes atomic.Uint32

	osc *dsp.Oscillator
	env *dsp.Envelope

	seenStrikes uint32
}

func newVoice(sampleRate, sustain float64) *Voice {
	v := &Voice{
		osc: dsp.NewOscillator(sampleRate),
		env: dsp.NewEnvelope(sampleRate),
	}
	v.osc.SetAmplitude(0)
	v.env.SetSustainLevel(sustain)
	v.pitch.Store(v.osc.Frequency())
	return v
}

// Gate reports whether the voice's note is held.
func (v *Voice) Gate() bool { return v.gate.Load() }

// Note returns the MIDI note occupying the slot; 0 means unassigned.
func (v *Voice) Note() uint8 {
	return uint8(v.note.Load()) //nolint:gosec // only ever written from a uint8
}

// Pitch returns the published oscillator frequency in Hz.
func (v *Voice) Pitch() float64 { return v.pitch.Load() }

// Level returns the last envelope output. Only meaningful on the audio
// goroutine or after rendering has stopped.
func (v *Voice) Level() float64 { return v.env.Value() }

// Stage returns the envelope stage. Same caveat as Level.
func (v *Voice) Stage() dsp.Stage { return v.env.Stage() }

// strike publishes a new note on this voice.
func (v *Voice) strike(note uint8) {
	v.note.Store(uint32(note))
	v.pitch.Store(dsp.NoteToFrequency(note))
	v.strikes.Add(1)
	v.gate.Store(true)
}

// release lowers the gate and forgets the note.
func (v *Voice) release() {
	v.note.Store(0)
	v.gate.Store(false)
}

// tune applies the published pitch scaled by ratio to the oscillator.
func (v *Voice) tune(ratio float64) {
	v.osc.SetFrequency(v.pitch.Load() * ratio)
}

// process renders one sample: the envelope follows the gate, its output
// becomes the oscillator amplitude, and the oscillator advances.
func (v *Voice) process() float64 {
	gate := v.gate.Load()
	if s := v.strikes.Load(); s != v.seenStrikes {
		v.seenStrikes = s
		if gate {
			v.env.Retrigger()
		}
	}
	v.osc.SetAmplitude(v.env.Process(gate))
	return v.osc.Process()
}
