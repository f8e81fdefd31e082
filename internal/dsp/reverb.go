package dsp

import "math"

const (
	fdnSize          = 8
	fdnReferenceRate = 44100.0
	defaultFeedback  = 0.95
	defaultDampingHz = 16000.0
)

var fdnDelays = [fdnSize]float64{1537, 1753, 1999, 2251, 2473, 2689, 2851, 3067}

var fdnHadamard = [fdnSize][fdnSize]float64{
	{1, 1, 1, 1, 1, 1, 1, 1},
	{1, -1, 1, -1, 1, -1, 1, -1},
	{1, 1, -1, -1, 1, 1, -1, -1},
	{1, -1, -1, 1, 1, -1, -1, 1},
	{1, 1, 1, 1, -1, -1, -1, -1},
	{1, -1, 1, -1, -1, 1, -1, 1},
	{1, 1, -1, -1, -1, -1, 1, 1},
	{1, -1, -1, 1, -1, 1, 1, -1},
}

// Reverb is a mono feedback-delay-network reverb. Process hands back the
// untouched input next to the wet signal so the caller owns the mix.
type Reverb struct {
	sampleRate float64
	feedback   float64
	dampCoef   float64
	dampingHz  float64

	lines  [fdnSize][]float64
	pos    [fdnSize]int
	lpf    [fdnSize]float64
	scale  float64
	outSum [fdnSize]float64
}

// NewReverb returns a long, bright reverb.
func NewReverb(sampleRate float64) *Reverb {
	r := &Reverb{
		sampleRate: sampleRate,
		feedback:   defaultFeedback,
		scale:      1 / math.Sqrt(fdnSize),
	}
	for i := range r.lines {
		n := int(math.Round(fdnDelays[i] * sampleRate / fdnReferenceRate))
		if n < 1 {
			n = 1
		}
		r.lines[i] = make([]float64, n)
	}
	r.SetDamping(defaultDampingHz)
	return r
}

// SetFeedback sets the loop gain in [0,1). Higher is longer.
func (r *Reverb) SetFeedback(g float64) {
	r.feedback = math.Max(0, math.Min(0.999, g))
}

// Feedback returns the loop gain.
func (r *Reverb) Feedback() float64 { return r.feedback }

// SetDamping sets the lowpass cutoff inside the feedback loop in Hz.
func (r *Reverb) SetDamping(hz float64) {
	hz = math.Max(1, math.Min(r.sampleRate*0.49, hz))
	r.dampingHz = hz
	r.dampCoef = math.Exp(-2 * math.Pi * hz / r.sampleRate)
}

// Damping returns the loop lowpass cutoff in Hz.
func (r *Reverb) Damping() float64 { return r.dampingHz }

// Reset clears the delay network.
func (r *Reverb) Reset() {
	for i := range r.lines {
		for j := range r.lines[i] {
			r.lines[i][j] = 0
		}
		r.pos[i] = 0
		r.lpf[i] = 0
	}
}

// Process feeds one sample into the network and returns the input unchanged
// as dry together with the reverberated wet sample.
func (r *Reverb) Process(x float64) (dry, wet float64) {
	for i := range r.lines {
		r.outSum[i] = r.lines[i][r.pos[i]]
		wet += r.outSum[i]
	}
	wet *= r.scale

	for i := range r.lines {
		fb := 0.0
		for j := range r.outSum {
			fb += fdnHadamard[i][j] * r.outSum[j]
		}
		fb *= r.scale * r.feedback
		r.lpf[i] = (1-r.dampCoef)*fb + r.dampCoef*r.lpf[i]

		r.lines[i][r.pos[i]] = x*r.scale + r.lpf[i]
		r.pos[i]++
		if r.pos[i] >= len(r.lines[i]) {
			r.pos[i] = 0
		}
	}

	return x, wet
}
