package dsp

import "math"

const (
	minLadderCutoffHz = 5.0
	maxLadderFraction = 0.45 // of the sample rate
	ladderThermal     = 5.0
	ladderStateLimit  = 32.0
)

// Ladder is a four-pole nonlinear Moog-style lowpass (Huovilainen model) with
// tuning and resonance compensation.
type Ladder struct {
	sampleRate float64
	cutoffHz   float64
	resonance  float64

	coefficient float64
	feedback    float64
	shape       float64

	stage      [4]float64
	tanhStage  [3]float64
	prevOutput float64
}

// NewLadder returns a ladder at 1 kHz with no resonance.
func NewLadder(sampleRate float64) *Ladder {
	l := &Ladder{
		sampleRate: sampleRate,
		shape:      0.5 / ladderThermal,
	}
	l.cutoffHz = -1
	l.SetCutoff(1000)
	return l
}

// SetCutoff sets the cutoff in Hz. The value is clamped to the usable range;
// coefficients are only rebuilt when it changes.
func (l *Ladder) SetCutoff(hz float64) {
	maxHz := l.sampleRate * maxLadderFraction
	switch {
	case math.IsNaN(hz) || hz < minLadderCutoffHz:
		hz = minLadderCutoffHz
	case hz > maxHz:
		hz = maxHz
	}
	if hz == l.cutoffHz {
		return
	}
	l.cutoffHz = hz
	l.rebuild()
}

// Cutoff returns the effective cutoff in Hz.
func (l *Ladder) Cutoff() float64 { return l.cutoffHz }

// SetResonance sets resonance in [0,1]; 1 is the edge of self-oscillation.
func (l *Ladder) SetResonance(q float64) {
	q = math.Max(0, math.Min(1, q))
	if q == l.resonance {
		return
	}
	l.resonance = q
	l.rebuild()
}

// Resonance returns the resonance in [0,1].
func (l *Ladder) Resonance() float64 { return l.resonance }

// Reset clears the filter state.
func (l *Ladder) Reset() {
	l.stage = [4]float64{}
	l.tanhStage = [3]float64{}
	l.prevOutput = 0
}

// Process filters one sample.
func (l *Ladder) Process(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}

	fb := 0.5 * (l.stage[3] + l.prevOutput)
	in := x - l.feedback*fb

	t0 := math.Tanh(l.shape * in)
	t1 := math.Tanh(l.shape * l.stage[0])
	t2 := math.Tanh(l.shape * l.stage[1])
	t3 := math.Tanh(l.shape * l.stage[2])
	t4 := math.Tanh(l.shape * l.stage[3])

	g := l.coefficient
	l.stage[0] = clipLadder(l.stage[0] + g*(t0-t1))
	l.tanhStage[0] = math.Tanh(l.shape * l.stage[0])

	l.stage[1] = clipLadder(l.stage[1] + g*(l.tanhStage[0]-t2))
	l.tanhStage[1] = math.Tanh(l.shape * l.stage[1])

	l.stage[2] = clipLadder(l.stage[2] + g*(l.tanhStage[1]-t3))
	l.tanhStage[2] = math.Tanh(l.shape * l.stage[2])

	l.stage[3] = clipLadder(l.stage[3] + g*(l.tanhStage[2]-t4))
	l.prevOutput = l.stage[3]

	return l.stage[3]
}

func (l *Ladder) rebuild() {
	fc := l.cutoffHz / l.sampleRate

	tune := 1.8730*fc*fc*fc + 0.4955*fc*fc - 0.6490*fc + 0.9988
	if tune < 0 {
		tune = 0
	}
	l.coefficient = 2 * ladderThermal * (1 - math.Exp(-2*math.Pi*tune*fc))

	comp := -3.9364*fc*fc + 1.8409*fc + 0.9968
	if comp < 0 {
		comp = 0
	}
	l.feedback = 4 * l.resonance * comp
}

func clipLadder(v float64) float64 {
	return math.Max(-ladderStateLimit, math.Min(ladderStateLimit, v))
}
