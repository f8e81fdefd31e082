package dsp

import "math"

// Waveform selects the oscillator shape.
type Waveform uint8

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveRamp
	WaveSquare
	WavePolyBLEPTriangle
	WavePolyBLEPSaw
	WavePolyBLEPSquare
	NumWaveforms
)

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSaw:
		return "saw"
	case WaveRamp:
		return "ramp"
	case WaveSquare:
		return "square"
	case WavePolyBLEPTriangle:
		return "blep-triangle"
	case WavePolyBLEPSaw:
		return "blep-saw"
	case WavePolyBLEPSquare:
		return "blep-square"
	default:
		return "unknown"
	}
}

const pulseWidth = 0.5

// Oscillator is a phase-accumulating tone generator. Phase runs in [0,1).
type Oscillator struct {
	sampleRate float64
	freq       float64
	amp        float64
	phase      float64
	phaseInc   float64
	waveform   Waveform
	lastOut    float64
}

// NewOscillator returns a 440 Hz sine at amplitude 0.5.
func NewOscillator(sampleRate float64) *Oscillator {
	o := &Oscillator{
		sampleRate: sampleRate,
		amp:        0.5,
		waveform:   WaveSine,
	}
	o.SetFrequency(440)
	return o
}

// SetWaveform selects the shape. Unknown values fall back to sine.
func (o *Oscillator) SetWaveform(w Waveform) {
	if w >= NumWaveforms {
		w = WaveSine
	}
	o.waveform = w
}

// Waveform returns the current shape.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// SetFrequency sets the pitch in Hz.
func (o *Oscillator) SetFrequency(hz float64) {
	o.freq = hz
	o.phaseInc = hz / o.sampleRate
}

// Frequency returns the pitch in Hz.
func (o *Oscillator) Frequency() float64 { return o.freq }

// SetAmplitude scales the output.
func (o *Oscillator) SetAmplitude(level float64) { o.amp = level }

// Amplitude returns the output scale.
func (o *Oscillator) Amplitude() float64 { return o.amp }

// Reset moves the phase back to the start of the cycle.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.lastOut = 0
}

// Process returns the next sample and advances the phase.
func (o *Oscillator) Process() float64 {
	var out float64
	t := o.phase
	switch o.waveform {
	case WaveSine:
		out = math.Sin(2 * math.Pi * t)
	case WaveTriangle:
		x := -1 + 2*t
		out = 2 * (math.Abs(x) - 0.5)
	case WaveSaw:
		out = 1 - 2*t
	case WaveRamp:
		out = 2*t - 1
	case WaveSquare:
		out = square(t)
	case WavePolyBLEPTriangle:
		out = square(t)
		out += polyBLEP(o.phaseInc, t)
		out -= polyBLEP(o.phaseInc, math.Mod(t+0.5, 1))
		// leaky integration of the band-limited square
		out = o.phaseInc*out + (1-o.phaseInc)*o.lastOut
		o.lastOut = out
	case WavePolyBLEPSaw:
		out = 2*t - 1
		out -= polyBLEP(o.phaseInc, t)
		out = -out
	case WavePolyBLEPSquare:
		out = square(t)
		out += polyBLEP(o.phaseInc, t)
		out -= polyBLEP(o.phaseInc, math.Mod(t+(1-pulseWidth), 1))
		out *= math.Sqrt2 / 2
	}

	o.phase += o.phaseInc
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	} else if o.phase < 0 {
		o.phase -= math.Floor(o.phase)
	}

	return out * o.amp
}

func square(t float64) float64 {
	if t < pulseWidth {
		return 1
	}
	return -1
}

// polyBLEP is the polynomial band-limited step correction around a
// discontinuity at phase 0.
func polyBLEP(inc, t float64) float64 {
	if inc <= 0 {
		return 0
	}
	switch {
	case t < inc:
		t /= inc
		return t + t - t*t - 1
	case t > 1-inc:
		t = (t - 1) / inc
		return t*t + t + t + 1
	default:
		return 0
	}
}

// NoteToFrequency converts a MIDI note number to Hz (A4 = note 69 = 440 Hz).
func NoteToFrequency(note uint8) float64 {
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}
