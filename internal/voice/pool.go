package voice

import (
	"math"

	"github.com/icco/hathor/internal/dsp"
)

// MaxDetuneCents is how far odd-numbered slots are raised at full detune.
const MaxDetuneCents = 50.0

// Pool is the fixed set of voices. It is created once and never resized.
type Pool struct {
	voices []*Voice

	shape        dsp.Waveform
	attack       float64
	decayRelease float64
}

// NewPool creates n voices at the given sample rate with a shared sustain
// level.
func NewPool(n int, sampleRate, sustain float64) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		voices:       make([]*Voice, n),
		attack:       -1,
		decayRelease: -1,
	}
	for i := range p.voices {
		p.voices[i] = newVoice(sampleRate, sustain)
	}
	p.Configure(dsp.WaveSine, 0, 0)
	return p
}

// Len returns the number of voices.
func (p *Pool) Len() int { return len(p.voices) }

// Voice returns slot i.
func (p *Pool) Voice(i int) *Voice { return p.voices[i] }

// Configure applies the settings shared by every voice. It is called from the
// audio path once per block and only touches the primitives when a value has
// changed.
func (p *Pool) Configure(shape dsp.Waveform, attack, decayRelease float64) {
	if shape != p.shape || p.attack < 0 {
		p.shape = shape
		for _, v := range p.voices {
			v.osc.SetWaveform(shape)
		}
	}
	if attack != p.attack {
		p.attack = attack
		for _, v := range p.voices {
			v.env.SetSegmentTime(dsp.SegmentAttack, attack)
		}
	}
	if decayRelease != p.decayRelease {
		p.decayRelease = decayRelease
		for _, v := range p.voices {
			v.env.SetSegmentTime(dsp.SegmentDecay, decayRelease)
			v.env.SetSegmentTime(dsp.SegmentRelease, decayRelease)
		}
	}
}

// Tune pushes every voice's published pitch into its oscillator. Odd slots
// are raised by detune * MaxDetuneCents.
func (p *Pool) Tune(detune float64) {
	ratio := DetuneRatio(detune)
	for i, v := range p.voices {
		if i%2 == 1 {
			v.tune(ratio)
		} else {
			v.tune(1)
		}
	}
}

// Process advances every voice by one sample and returns their plain sum.
func (p *Pool) Process() float64 {
	sum := 0.0
	for _, v := range p.voices {
		sum += v.process()
	}
	return sum
}

// DetuneRatio converts a detune amount in [0,1] to a frequency multiplier.
func DetuneRatio(detune float64) float64 {
	if detune <= 0 {
		return 1
	}
	return math.Pow(2, detune*MaxDetuneCents/1200)
}
