package params

import (
	"fmt"
	"strings"
)

// Knob ranges.
const (
	MaxCutoffHz    = 5000.0
	MaxResonance   = 0.8
	MaxModRateHz   = 64.0
	MaxShapeIndex  = 5.0
	MaxSegmentTime = 1.0 // seconds
)

// Curve selects how a normalized knob position is spread over a range.
type Curve int

const (
	Linear Curve = iota
	Exponential
)

func (c Curve) String() string {
	switch c {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// ParseCurve accepts the names returned by Curve.String.
func ParseCurve(name string) (Curve, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear", "lin":
		return Linear, nil
	case "exponential", "exp":
		return Exponential, nil
	default:
		return Linear, fmt.Errorf("unknown mapping curve %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Curve) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Curve) UnmarshalText(text []byte) error {
	parsed, err := ParseCurve(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Invert flips a raw hardware reading so that "knob up" means more.
func Invert(raw float64) float64 {
	return 1.0 - raw
}

// Map spreads x in [0,1] over [lo, hi]. Values outside [0,1] are not clamped.
func Map(x, lo, hi float64, curve Curve) float64 {
	if curve == Exponential {
		x *= x
	}
	return lo + x*(hi-lo)
}

// DryFromWet returns the dry level that complements a reverb wet level.
func DryFromWet(wet float64) float64 {
	return 1 - wet
}

// ShapeIndex maps a knob position to a waveform index by truncation.
func ShapeIndex(x float64) uint8 {
	v := Map(x, 0, MaxShapeIndex, Linear)
	if v < 0 {
		return 0
	}
	return uint8(v)
}
