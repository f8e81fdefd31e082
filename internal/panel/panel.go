// Package panel is a software stand-in for the front panel: fourteen
// potentiometers and two pulled-up switches.
//
// Readings are stored the way the hardware reports them, inverted, so the
// control loop applies the same correction it would on the device. Setters
// take positions in the "knob up = more" sense. Any goroutine may call any
// method.
package panel

import (
	"math"
	"sync/atomic"

	"github.com/icco/hathor/internal/control"
	"github.com/icco/hathor/internal/params"
)

// Panel implements control.Inputs.
type Panel struct {
	raw    [control.NumChannels]params.Float
	closed [control.NumSwitches]atomic.Bool
}

// New returns a panel with every knob fully down and both switches open.
func New() *Panel {
	p := &Panel{}
	for i := range p.raw {
		p.raw[i].Store(1)
	}
	return p
}

// Analog returns the raw (inverted) reading of ch.
func (p *Panel) Analog(ch control.Channel) float64 {
	if ch < 0 || ch >= control.NumChannels {
		return 1
	}
	return p.raw[ch].Load()
}

// Level returns the pin level of sw: true while open.
func (p *Panel) Level(sw control.Switch) bool {
	if sw < 0 || sw >= control.NumSwitches {
		return true
	}
	return !p.closed[sw].Load()
}

// Knob returns the position of ch in [0,1].
func (p *Panel) Knob(ch control.Channel) float64 {
	return params.Invert(p.Analog(ch))
}

// SetKnob moves ch to position, clamped to [0,1].
func (p *Panel) SetKnob(ch control.Channel, position float64) {
	if ch < 0 || ch >= control.NumChannels {
		return
	}
	position = math.Max(0, math.Min(1, position))
	p.raw[ch].Store(params.Invert(position))
}

// Nudge turns ch by delta.
func (p *Panel) Nudge(ch control.Channel, delta float64) {
	p.SetKnob(ch, p.Knob(ch)+delta)
}

// Engaged reports whether sw is pressed or closed.
func (p *Panel) Engaged(sw control.Switch) bool {
	return !p.Level(sw)
}

// SetSwitch closes (true) or opens sw.
func (p *Panel) SetSwitch(sw control.Switch, engaged bool) {
	if sw < 0 || sw >= control.NumSwitches {
		return
	}
	p.closed[sw].Store(engaged)
}

// Toggle flips sw.
func (p *Panel) Toggle(sw control.Switch) {
	p.SetSwitch(sw, !p.Engaged(sw))
}

// SetFromController moves ch from a 7-bit MIDI controller value.
func (p *Panel) SetFromController(ch control.Channel, value uint8) {
	p.SetKnob(ch, float64(value)/127)
}
