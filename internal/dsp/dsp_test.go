package dsp

import (
	"math"
	"testing"
)

const testRate = 48000.0

func TestNoteToFrequency(t *testing.T) {
	tests := []struct {
		note uint8
		want float64
		name string
	}{
		{69, 440, "A4"},
		{57, 220, "A3"},
		{81, 880, "A5"},
		{60, 261.6256, "C4"},
	}

	for _, tt := range tests {
		got := NoteToFrequency(tt.note)
		if math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("Expected %s (%d) = %.4f Hz, got %.4f", tt.name, tt.note, tt.want, got)
		}
	}
}

func TestOscillatorWaveformsStayBounded(t *testing.T) {
	for w := WaveSine; w < NumWaveforms; w++ {
		o := NewOscillator(testRate)
		o.SetWaveform(w)
		o.SetFrequency(440)
		o.SetAmplitude(1)
		for i := 0; i < 4800; i++ {
			v := o.Process()
			if math.Abs(v) > 1.5 || math.IsNaN(v) {
				t.Fatalf("Expected %s output within bounds, got %f at sample %d", w, v, i)
			}
		}
	}
}

func TestOscillatorAmplitudeScalesOutput(t *testing.T) {
	o := NewOscillator(testRate)
	o.SetWaveform(WaveSquare)
	o.SetAmplitude(0)
	for i := 0; i < 100; i++ {
		if v := o.Process(); v != 0 {
			t.Fatalf("Expected silence at amplitude 0, got %f", v)
		}
	}

	o.SetAmplitude(0.25)
	if v := o.Process(); math.Abs(math.Abs(v)-0.25) > 1e-12 {
		t.Errorf("Expected square at amplitude 0.25 to be ±0.25, got %f", v)
	}
}

func TestOscillatorPeriod(t *testing.T) {
	o := NewOscillator(testRate)
	o.SetWaveform(WaveRamp)
	o.SetFrequency(480) // 100 samples per cycle
	o.SetAmplitude(1)

	wraps := 0
	prev := o.Process()
	for i := 1; i < 1050; i++ {
		v := o.Process()
		if v < prev {
			wraps++
		}
		prev = v
	}
	if wraps != 10 {
		t.Errorf("Expected 10 cycle wraps in 1050 samples, got %d", wraps)
	}
}

func TestUnknownWaveformFallsBackToSine(t *testing.T) {
	o := NewOscillator(testRate)
	o.SetWaveform(Waveform(42))
	if o.Waveform() != WaveSine {
		t.Errorf("Expected fallback to sine, got %s", o.Waveform())
	}
}

func TestEnvelopeStages(t *testing.T) {
	e := NewEnvelope(testRate)
	e.SetSegmentTime(SegmentAttack, 0.01)
	e.SetSegmentTime(SegmentDecay, 0.01)
	e.SetSegmentTime(SegmentRelease, 0.01)
	e.SetSustainLevel(0.25)

	if v := e.Process(false); v != 0 || e.Stage() != StageIdle {
		t.Fatalf("Expected idle envelope at 0, got %f in %s", v, e.Stage())
	}

	peak := 0.0
	for i := 0; i < int(testRate*0.1); i++ {
		peak = math.Max(peak, e.Process(true))
	}
	if peak != 1 {
		t.Errorf("Expected attack to reach 1, got %f", peak)
	}
	if e.Stage() != StageSustain || e.Value() != 0.25 {
		t.Errorf("Expected sustain at 0.25, got %f in %s", e.Value(), e.Stage())
	}

	e.Process(false)
	if e.Stage() != StageRelease {
		t.Errorf("Expected release after gate drop, got %s", e.Stage())
	}
}

func TestEnvelopeIdleSilence(t *testing.T) {
	for _, release := range []float64{0, 0.001, 0.05, 0.5, 1} {
		e := NewEnvelope(testRate)
		e.SetSegmentTime(SegmentAttack, 0)
		e.SetSegmentTime(SegmentDecay, 0.1)
		e.SetSegmentTime(SegmentRelease, release)
		e.SetSustainLevel(0.25)

		for i := 0; i < 2000; i++ {
			e.Process(true)
		}

		releaseSamples := int(release*testRate) + 2
		for i := 0; i < releaseSamples; i++ {
			e.Process(false)
		}
		for i := 0; i < 10000; i++ {
			if v := e.Process(false); v >= 1e-4 {
				t.Fatalf("Expected silence after %.3fs release, got %g at sample %d", release, v, i)
			}
		}
		if e.Stage() != StageIdle {
			t.Errorf("Expected idle after %.3fs release, got %s", release, e.Stage())
		}
	}
}

func TestEnvelopeRetrigger(t *testing.T) {
	e := NewEnvelope(testRate)
	e.SetSegmentTime(SegmentAttack, 0.01)
	e.SetSegmentTime(SegmentDecay, 0.01)
	e.SetSustainLevel(0.25)
	for i := 0; i < 4800; i++ {
		e.Process(true)
	}
	if e.Stage() != StageSustain {
		t.Fatalf("Expected sustain, got %s", e.Stage())
	}

	e.Retrigger()
	e.Process(true)
	if e.Stage() != StageAttack {
		t.Errorf("Expected attack after retrigger, got %s", e.Stage())
	}
	if e.Value() <= 0.25 {
		t.Errorf("Expected attack to start from the held level, got %f", e.Value())
	}
}

func rms(samples []float64) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestLadderAttenuatesAboveCutoff(t *testing.T) {
	render := func(freq float64) float64 {
		l := NewLadder(testRate)
		l.SetCutoff(500)
		o := NewOscillator(testRate)
		o.SetFrequency(freq)
		o.SetAmplitude(0.5)
		out := make([]float64, 9600)
		for i := range out {
			out[i] = l.Process(o.Process())
		}
		return rms(out[4800:])
	}

	low := render(100)
	high := render(8000)
	if high >= low*0.1 {
		t.Errorf("Expected 8 kHz to be at least 20 dB below 100 Hz, got rms %f vs %f", high, low)
	}
}

func TestLadderClampsCutoff(t *testing.T) {
	l := NewLadder(testRate)
	l.SetCutoff(0)
	if l.Cutoff() != minLadderCutoffHz {
		t.Errorf("Expected cutoff clamped to %f, got %f", minLadderCutoffHz, l.Cutoff())
	}
	l.SetCutoff(1e9)
	if math.Abs(l.Cutoff()-testRate*maxLadderFraction) > 1e-6 {
		t.Errorf("Expected cutoff clamped to %f, got %f", testRate*maxLadderFraction, l.Cutoff())
	}
}

func TestChorusSilenceInSilenceOut(t *testing.T) {
	c := NewChorus(testRate)
	c.SetRateAndDepth(1, 1)
	for i := 0; i < 4800; i++ {
		if v := c.Process(0); v != 0 {
			t.Fatalf("Expected silence, got %f", v)
		}
	}
}

func TestChorusOddTapsSweepSlower(t *testing.T) {
	c := NewChorus(testRate)
	c.SetRateAndDepth(1, 1)
	for i := 0; i < 1000; i++ {
		c.Process(0)
	}
	if c.lfoPhase[0] <= 0 {
		t.Fatalf("Expected the first LFO to advance, got phase %f", c.lfoPhase[0])
	}
	if got := c.lfoPhase[1] / c.lfoPhase[0]; math.Abs(got-0.9) > 1e-9 {
		t.Errorf("Expected second LFO at 0.9x the first, got ratio %f", got)
	}

	c.Reset()
	if c.lfoPhase[0] != 0 || c.lfoPhase[1] != 0 {
		t.Errorf("Expected reset phases, got %v", c.lfoPhase)
	}
}

func TestChorusPassesHalfOfImpulseImmediately(t *testing.T) {
	c := NewChorus(testRate)
	if v := c.Process(1); v != 0.5 {
		t.Errorf("Expected direct path of 0.5, got %f", v)
	}
}

func TestReverbDryIsPassThrough(t *testing.T) {
	r := NewReverb(testRate)
	for i, x := range []float64{0.5, -0.25, 1, 0} {
		dry, _ := r.Process(x)
		if dry != x {
			t.Errorf("Expected dry[%d] = %f, got %f", i, x, dry)
		}
	}
}

func TestReverbTailDecays(t *testing.T) {
	r := NewReverb(testRate)
	r.Process(1)
	early := make([]float64, 4800)
	for i := range early {
		_, early[i] = r.Process(0)
	}
	for i := 0; i < int(testRate*10); i++ {
		r.Process(0)
	}
	late := make([]float64, 4800)
	for i := range late {
		_, late[i] = r.Process(0)
	}

	if rms(early) == 0 {
		t.Fatal("Expected a reverb tail after an impulse")
	}
	if rms(late) >= rms(early) {
		t.Errorf("Expected tail to decay, got rms %g late vs %g early", rms(late), rms(early))
	}
}
