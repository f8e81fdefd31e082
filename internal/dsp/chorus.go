package dsp

import "math"

const (
	chorusBaseDelay = 0.0075 // seconds
	chorusMaxDepth  = 0.005  // seconds of sweep at depth 1
	chorusStages    = 3
	chorusMix       = 0.5
	chorusMaxRateHz = 20.0
	chorusGuardTaps = 4

	// Odd taps follow a second LFO running slightly slower than the first.
	chorusSecondRate = 0.9
)

// Chorus is a multi-tap modulated-delay chorus. The delay line is sized once
// for the deepest sweep, so changing rate or depth never allocates.
type Chorus struct {
	sampleRate float64
	rateHz     float64
	depth      float64

	lfoPhase [2]float64

	line  []float64
	write int
}

// NewChorus returns a chorus with a slow, shallow sweep.
func NewChorus(sampleRate float64) *Chorus {
	size := int(math.Ceil((chorusBaseDelay+chorusMaxDepth)*sampleRate)) + chorusGuardTaps
	return &Chorus{
		sampleRate: sampleRate,
		rateHz:     0.3,
		depth:      0.2,
		line:       make([]float64, size),
	}
}

// SetRateAndDepth sets the sweep rate in Hz and depth in [0,1].
func (c *Chorus) SetRateAndDepth(rateHz, depth float64) {
	c.rateHz = math.Max(0, math.Min(chorusMaxRateHz, rateHz))
	c.depth = math.Max(0, math.Min(1, depth))
}

// Rate returns the sweep rate in Hz.
func (c *Chorus) Rate() float64 { return c.rateHz }

// Depth returns the sweep depth in [0,1].
func (c *Chorus) Depth() float64 { return c.depth }

// Reset clears the delay line and sweep phase.
func (c *Chorus) Reset() {
	for i := range c.line {
		c.line[i] = 0
	}
	c.write = 0
	c.lfoPhase = [2]float64{}
}

// Process returns the chorused sample, an even mix of input and taps.
func (c *Chorus) Process(x float64) float64 {
	c.line[c.write] = x
	c.write++
	if c.write >= len(c.line) {
		c.write = 0
	}

	base := chorusBaseDelay * c.sampleRate
	sweep := c.depth * chorusMaxDepth * c.sampleRate

	wet := 0.0
	for i := 0; i < chorusStages; i++ {
		offset := 2 * math.Pi * float64(i) / chorusStages
		mod := 0.5 * (1 + math.Sin(c.lfoPhase[i%2]+offset))
		wet += c.tap(base + sweep*mod)
	}
	wet /= chorusStages

	inc := 2 * math.Pi * c.rateHz / c.sampleRate
	c.lfoPhase[0] = wrapPhase(c.lfoPhase[0] + inc)
	c.lfoPhase[1] = wrapPhase(c.lfoPhase[1] + inc*chorusSecondRate)

	return x*(1-chorusMix) + wet*chorusMix
}

func wrapPhase(p float64) float64 {
	if p >= 2*math.Pi {
		p -= 2 * math.Pi
	}
	return p
}

// tap reads the line delay samples behind the newest write using 4-point
// Hermite interpolation.
func (c *Chorus) tap(delay float64) float64 {
	d := int(delay)
	frac := delay - float64(d)
	xm1 := c.at(d - 1)
	x0 := c.at(d)
	x1 := c.at(d + 1)
	x2 := c.at(d + 2)
	return hermite4(frac, xm1, x0, x1, x2)
}

func (c *Chorus) at(delay int) float64 {
	if delay < 1 {
		delay = 1
	}
	n := len(c.line)
	idx := c.write - delay
	for idx < 0 {
		idx += n
	}
	return c.line[idx%n]
}

func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
