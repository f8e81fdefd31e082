package engine

import "github.com/icco/hathor/internal/params"

const (
	// ModulatorMaxHz is the top of the range the LFO sweeps the cutoff over.
	ModulatorMaxHz = 5000.0
	// modulatorAmplitude keeps the raw LFO in [-0.5, 0.5] so that the +0.5
	// offset lands it in [0,1].
	modulatorAmplitude = 0.5
)

// LFO is the oscillator behind the global modulator.
type LFO interface {
	SetFrequency(hz float64)
	Process() float64
}

// Modulator turns a free-running LFO into a filter cutoff.
type Modulator struct {
	osc  LFO
	rate float64
}

// NewModulator wraps osc. The oscillator is advanced once per Next call,
// whether or not its output ends up being used.
func NewModulator(osc LFO) *Modulator {
	m := &Modulator{osc: osc, rate: -1}
	return m
}

// SetRate sets the LFO frequency in Hz.
func (m *Modulator) SetRate(hz float64) {
	if hz == m.rate {
		return
	}
	m.rate = hz
	m.osc.SetFrequency(hz)
}

// Next advances the LFO one sample and returns it as a frequency in
// [0, ModulatorMaxHz].
func (m *Modulator) Next() float64 {
	return params.Map(m.osc.Process()+0.5, 0, ModulatorMaxHz, params.Linear)
}

// Blend mixes the knob cutoff with the modulator frequency by depth.
func Blend(base, mod, depth float64) float64 {
	return base*(1-depth) + mod*depth
}
