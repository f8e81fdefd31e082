package panel

import (
	"math"
	"testing"

	"github.com/icco/hathor/internal/control"
	"github.com/icco/hathor/internal/params"
)

func TestNewPanelIsDown(t *testing.T) {
	p := New()
	for ch := control.Channel(0); ch < control.NumChannels; ch++ {
		if p.Analog(ch) != 1 || p.Knob(ch) != 0 {
			t.Errorf("Expected %s fully down, got raw %f", ch, p.Analog(ch))
		}
	}
	for sw := control.Switch(0); sw < control.NumSwitches; sw++ {
		if !p.Level(sw) {
			t.Errorf("Expected %s switch open (high)", sw)
		}
	}
}

func TestKnobsStoreInvertedReadings(t *testing.T) {
	p := New()
	p.SetKnob(control.CutoffKnob, 0.8)
	if got := p.Analog(control.CutoffKnob); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("Expected raw reading 0.2, got %f", got)
	}

	p.SetKnob(control.MasterKnob, 2)
	if p.Knob(control.MasterKnob) != 1 {
		t.Errorf("Expected clamp to 1, got %f", p.Knob(control.MasterKnob))
	}
	p.Nudge(control.MasterKnob, -0.25)
	if p.Knob(control.MasterKnob) != 0.75 {
		t.Errorf("Expected 0.75 after nudge, got %f", p.Knob(control.MasterKnob))
	}
}

func TestSwitchToggle(t *testing.T) {
	p := New()
	p.Toggle(control.FilterSwitch)
	if p.Level(control.FilterSwitch) || !p.Engaged(control.FilterSwitch) {
		t.Error("Expected filter switch closed after toggle")
	}
	p.Toggle(control.FilterSwitch)
	if !p.Level(control.FilterSwitch) {
		t.Error("Expected filter switch open after second toggle")
	}
}

func TestControllerValues(t *testing.T) {
	p := New()
	p.SetFromController(control.ReverbKnob, 127)
	if p.Knob(control.ReverbKnob) != 1 {
		t.Errorf("Expected CC 127 to turn the knob fully up, got %f", p.Knob(control.ReverbKnob))
	}
	p.SetFromController(control.ReverbKnob, 0)
	if p.Knob(control.ReverbKnob) != 0 {
		t.Errorf("Expected CC 0 to turn the knob fully down, got %f", p.Knob(control.ReverbKnob))
	}
}

func TestPanelDrivesLoop(t *testing.T) {
	p := New()
	p.SetKnob(control.MasterKnob, 0.6)
	p.SetSwitch(control.LFOSwitch, true)

	s := params.NewStore()
	control.NewLoop(s, nopAllocator{}, p, nil).Tick()

	if math.Abs(s.Master.Load()-0.6) > 1e-12 {
		t.Errorf("Expected master 0.6, got %f", s.Master.Load())
	}
	if !s.ModOn.Load() || s.FilterOn.Load() {
		t.Errorf("Expected modulator on and filter off, got mod=%v filter=%v", s.ModOn.Load(), s.FilterOn.Load())
	}
}

type nopAllocator struct{}

func (nopAllocator) NoteOn(uint8, uint8) {}
func (nopAllocator) NoteOff(uint8)       {}
func (nopAllocator) ReleaseAll()         {}
