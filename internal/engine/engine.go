// Package engine renders the voice pool through the global signal chain:
// LFO-modulated ladder filter, chorus, reverb and master gain.
package engine

import (
	"errors"

	"github.com/icco/hathor/internal/dsp"
	"github.com/icco/hathor/internal/params"
	"github.com/icco/hathor/internal/voice"
)

// FilterMakeup compensates the ladder's passband loss.
const FilterMakeup = 3.0

// Filter is the cutoff-controlled stage.
type Filter interface {
	SetCutoff(hz float64)
	SetResonance(q float64)
	Process(x float64) float64
}

// Chorus is the always-on modulation stage.
type Chorus interface {
	SetRateAndDepth(rateHz, depth float64)
	Process(x float64) float64
}

// Reverb is the always-on ambience stage. It returns the dry input and the
// wet signal separately.
type Reverb interface {
	Process(x float64) (dry, wet float64)
}

// Option configures an Engine.
type Option func(*Engine)

// WithFilter replaces the ladder filter.
func WithFilter(f Filter) Option { return func(e *Engine) { e.filter = f } }

// WithChorus replaces the chorus.
func WithChorus(c Chorus) Option { return func(e *Engine) { e.chorus = c } }

// WithReverb replaces the reverb.
func WithReverb(r Reverb) Option { return func(e *Engine) { e.reverb = r } }

// WithLFO replaces the modulator oscillator.
func WithLFO(osc LFO) Option { return func(e *Engine) { e.mod = NewModulator(osc) } }

// Engine is the per-block audio graph. Process is the only method meant for
// the audio goroutine; it reads the parameter store and never writes it.
type Engine struct {
	store *params.Store
	pool  *voice.Pool

	mod    *Modulator
	filter Filter
	chorus Chorus
	reverb Reverb

	resonance   float64
	chorusRate  float64
	chorusDepth float64
}

// New builds an engine over store and pool. Primitives not supplied through
// options are created at sampleRate.
func New(store *params.Store, pool *voice.Pool, sampleRate float64, opts ...Option) (*Engine, error) {
	if store == nil || pool == nil {
		return nil, errors.New("engine: store and pool are required")
	}
	if sampleRate <= 0 {
		return nil, errors.New("engine: sample rate must be positive")
	}

	e := &Engine{
		store:       store,
		pool:        pool,
		resonance:   -1,
		chorusRate:  -1,
		chorusDepth: -1,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.mod == nil {
		lfo := dsp.NewOscillator(sampleRate)
		lfo.SetWaveform(dsp.WaveSine)
		lfo.SetAmplitude(modulatorAmplitude)
		e.mod = NewModulator(lfo)
	}
	if e.filter == nil {
		e.filter = dsp.NewLadder(sampleRate)
	}
	if e.chorus == nil {
		e.chorus = dsp.NewChorus(sampleRate)
	}
	if e.reverb == nil {
		e.reverb = dsp.NewReverb(sampleRate)
	}

	return e, nil
}

// Pool returns the voice pool the engine renders.
func (e *Engine) Pool() *voice.Pool { return e.pool }

// Process fills out with interleaved stereo frames. A trailing odd sample is
// left untouched.
func (e *Engine) Process(out []float32) {
	p := e.store.Snapshot()
	e.apply(&p)

	for i := 0; i+1 < len(out); i += 2 {
		s := float32(e.frame(&p))
		out[i] = s
		out[i+1] = s
	}
}

// apply pushes the slowly varying parameters into the primitives.
func (e *Engine) apply(p *params.Snapshot) {
	if p.Resonance != e.resonance {
		e.resonance = p.Resonance
		e.filter.SetResonance(p.Resonance)
	}
	if p.ChorusRate != e.chorusRate || p.ChorusDepth != e.chorusDepth {
		e.chorusRate, e.chorusDepth = p.ChorusRate, p.ChorusDepth
		e.chorus.SetRateAndDepth(p.ChorusRate, p.ChorusDepth)
	}
	e.mod.SetRate(p.ModRate)
	e.pool.Configure(dsp.Waveform(p.Shape), p.Attack, p.DecayRelease)
	e.pool.Tune(p.Detune)
}

// frame renders one mono sample.
func (e *Engine) frame(p *params.Snapshot) float64 {
	modHz := e.mod.Next()
	cutoff := p.Cutoff
	if p.ModOn {
		cutoff = Blend(p.Cutoff, modHz, p.ModDepth)
	}
	e.filter.SetCutoff(cutoff)

	signal := e.shape(e.pool.Process(), p.FilterOn)
	signal = e.chorus.Process(signal)
	dry, wet := e.reverb.Process(signal)

	return (dry*p.Dry + wet*p.Wet) * p.Master
}

// shape applies the optional filter with its makeup gain.
func (e *Engine) shape(raw float64, filterOn bool) float64 {
	if !filterOn {
		return raw
	}
	return e.filter.Process(raw) * FilterMakeup
}
