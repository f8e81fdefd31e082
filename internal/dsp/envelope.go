package dsp

import "math"

// SilenceThreshold is the level below which a releasing envelope snaps to 0.
// Decay and release curves are shaped so that they reach it exactly at the end
// of their configured time.
const SilenceThreshold = 1e-5

// Segment names an envelope stage whose duration is configurable.
type Segment int

const (
	SegmentAttack Segment = iota
	SegmentDecay
	SegmentRelease
)

// Stage is the current envelope state.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Envelope is a gate-driven ADSR generator producing values in [0,1].
//
// Attack is linear. Decay and release are exponential and reach the target
// (within SilenceThreshold) after exactly their configured time.
type Envelope struct {
	sampleRate float64

	times   [3]float64
	sustain float64

	attackStep  float64
	decayCoef   float64
	releaseCoef float64

	stage    Stage
	value    float64
	prevGate bool
}

// NewEnvelope returns an idle envelope with short default segments.
func NewEnvelope(sampleRate float64) *Envelope {
	e := &Envelope{
		sampleRate: sampleRate,
		times:      [3]float64{0.01, 0.1, 0.1},
		sustain:    0.7,
	}
	e.updateCoefficients()
	return e
}

// SetSegmentTime sets the duration of a segment in seconds. Non-positive times
// make the segment instantaneous.
func (e *Envelope) SetSegmentTime(seg Segment, seconds float64) {
	if seg < SegmentAttack || seg > SegmentRelease {
		return
	}
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	if e.times[seg] == seconds {
		return
	}
	e.times[seg] = seconds
	e.updateCoefficients()
}

// SegmentTime returns the duration of a segment in seconds.
func (e *Envelope) SegmentTime(seg Segment) float64 {
	if seg < SegmentAttack || seg > SegmentRelease {
		return 0
	}
	return e.times[seg]
}

// SetSustainLevel sets the plateau level, clamped to [0,1].
func (e *Envelope) SetSustainLevel(level float64) {
	e.sustain = math.Max(0, math.Min(1, level))
}

// SustainLevel returns the plateau level.
func (e *Envelope) SustainLevel() float64 { return e.sustain }

// Stage returns the current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Value returns the last output.
func (e *Envelope) Value() float64 { return e.value }

// Retrigger restarts the attack from the current level.
func (e *Envelope) Retrigger() {
	e.stage = StageAttack
}

// Process advances one sample. A rising gate starts the attack and a falling
// gate starts the release.
func (e *Envelope) Process(gate bool) float64 {
	if gate && !e.prevGate {
		e.stage = StageAttack
	} else if !gate && e.prevGate && e.stage != StageIdle {
		e.stage = StageRelease
	}
	e.prevGate = gate

	switch e.stage {
	case StageAttack:
		if e.attackStep <= 0 {
			e.value = 1
		} else {
			e.value += e.attackStep
		}
		if e.value >= 1 {
			e.value = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.value = e.sustain + (e.value-e.sustain)*e.decayCoef
		if math.Abs(e.value-e.sustain) < SilenceThreshold {
			e.value = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.value = e.sustain
	case StageRelease:
		e.value *= e.releaseCoef
		if e.value < SilenceThreshold {
			e.value = 0
			e.stage = StageIdle
		}
	case StageIdle:
		e.value = 0
	}

	return e.value
}

func (e *Envelope) updateCoefficients() {
	e.attackStep = 0
	if t := e.times[SegmentAttack]; t > 0 {
		e.attackStep = 1 / (t * e.sampleRate)
	}
	e.decayCoef = segmentCoef(e.times[SegmentDecay], e.sampleRate)
	e.releaseCoef = segmentCoef(e.times[SegmentRelease], e.sampleRate)
}

// segmentCoef is the per-sample multiplier that shrinks a unit distance to
// SilenceThreshold in the given time.
func segmentCoef(seconds, sampleRate float64) float64 {
	n := seconds * sampleRate
	if n < 1 {
		return 0
	}
	return math.Exp(math.Log(SilenceThreshold) / n)
}
