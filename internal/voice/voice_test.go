package voice

import (
	"math"
	"testing"

	"github.com/icco/hathor/internal/dsp"
)

const testRate = 48000.0

type slotState struct {
	note uint8
	gate bool
}

func snapshot(p *Pool) []slotState {
	out := make([]slotState, p.Len())
	for i := range out {
		v := p.Voice(i)
		out[i] = slotState{note: v.Note(), gate: v.Gate()}
	}
	return out
}

func TestRoundRobinOverwritesFirstSlot(t *testing.T) {
	const n = 6
	p := NewPool(n, testRate, DefaultSustainLevel)
	a := NewAllocator(p)

	for i := 0; i < n; i++ {
		a.NoteOn(uint8(60+i), 100) //nolint:gosec // small test constants
	}
	first := 1 // the cursor advances before writing
	if got := p.Voice(first).Note(); got != 60 {
		t.Fatalf("Expected first note in slot %d, got note %d", first, got)
	}

	before := snapshot(p)
	a.NoteOn(90, 100)
	after := snapshot(p)

	if a.Cursor() != first {
		t.Errorf("Expected cursor to wrap to slot %d, got %d", first, a.Cursor())
	}
	for i := range after {
		if i == first {
			if after[i].note != 90 || !after[i].gate {
				t.Errorf("Expected slot %d overwritten with note 90, got %+v", i, after[i])
			}
			continue
		}
		if after[i] != before[i] {
			t.Errorf("Expected slot %d unchanged (%+v), got %+v", i, before[i], after[i])
		}
	}
}

func TestNoteOffReleasesAllMatches(t *testing.T) {
	p := NewPool(2, testRate, DefaultSustainLevel)
	a := NewAllocator(p)

	a.NoteOn(60, 100)
	a.NoteOn(60, 100) // wraps into the other slot
	for i := 0; i < p.Len(); i++ {
		if !p.Voice(i).Gate() || p.Voice(i).Note() != 60 {
			t.Fatalf("Expected slot %d to hold note 60, got note %d gate %v", i, p.Voice(i).Note(), p.Voice(i).Gate())
		}
	}

	a.NoteOff(60)
	for i := 0; i < p.Len(); i++ {
		if p.Voice(i).Gate() {
			t.Errorf("Expected slot %d released", i)
		}
		if p.Voice(i).Note() != 0 {
			t.Errorf("Expected slot %d note cleared, got %d", i, p.Voice(i).Note())
		}
	}
}

func TestNoteOffWithoutMatchIsNoop(t *testing.T) {
	p := NewPool(6, testRate, DefaultSustainLevel)
	a := NewAllocator(p)
	a.NoteOn(60, 100)
	a.NoteOn(64, 100)

	before := snapshot(p)
	a.NoteOff(72)
	after := snapshot(p)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Expected slot %d unchanged, got %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestVelocityZeroNoteOnChangesNothing(t *testing.T) {
	p := NewPool(6, testRate, DefaultSustainLevel)
	a := NewAllocator(p)
	a.NoteOn(60, 100)
	a.NoteOn(62, 100)

	before := snapshot(p)
	cursor := a.Cursor()
	a.NoteOn(64, 0)

	if a.Cursor() != cursor {
		t.Errorf("Expected cursor %d, got %d", cursor, a.Cursor())
	}
	after := snapshot(p)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Expected slot %d unchanged, got %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestReleaseAll(t *testing.T) {
	p := NewPool(4, testRate, DefaultSustainLevel)
	a := NewAllocator(p)
	for _, n := range []uint8{60, 64, 67} {
		a.NoteOn(n, 90)
	}
	a.ReleaseAll()
	for i := 0; i < p.Len(); i++ {
		if p.Voice(i).Gate() || p.Voice(i).Note() != 0 {
			t.Errorf("Expected slot %d released, got note %d gate %v", i, p.Voice(i).Note(), p.Voice(i).Gate())
		}
	}
}

func TestNoteOnPublishesPitch(t *testing.T) {
	p := NewPool(3, testRate, DefaultSustainLevel)
	a := NewAllocator(p)
	a.NoteOn(69, 100)
	if got := p.Voice(a.Cursor()).Pitch(); got != 440 {
		t.Errorf("Expected 440 Hz, got %f", got)
	}
}

func TestReleasedVoiceFallsSilent(t *testing.T) {
	p := NewPool(2, testRate, DefaultSustainLevel)
	a := NewAllocator(p)
	p.Configure(dsp.WaveSquare, 0.005, 0.05)
	p.Tune(0)

	a.NoteOn(60, 100)
	p.Tune(0)
	loud := 0.0
	for i := 0; i < 4800; i++ {
		loud = math.Max(loud, math.Abs(p.Process()))
	}
	if loud < 0.2 {
		t.Fatalf("Expected an audible note, got peak %f", loud)
	}

	a.NoteOff(60)
	for i := 0; i < int(0.05*testRate)+2; i++ {
		p.Process()
	}
	for i := 0; i < 4800; i++ {
		if v := p.Process(); math.Abs(v) >= 1e-4 {
			t.Fatalf("Expected silence after release, got %g", v)
		}
	}
}

func TestOverwriteRetriggersHeldVoice(t *testing.T) {
	p := NewPool(1, testRate, DefaultSustainLevel)
	a := NewAllocator(p)
	p.Configure(dsp.WaveSine, 0.01, 0.01)

	a.NoteOn(60, 100)
	for i := 0; i < 4800; i++ {
		p.Process()
	}
	v := p.Voice(0)
	if v.Stage() != dsp.StageSustain {
		t.Fatalf("Expected sustain, got %s", v.Stage())
	}

	a.NoteOn(67, 100)
	p.Process()
	if v.Stage() != dsp.StageAttack {
		t.Errorf("Expected forced retrigger into attack, got %s", v.Stage())
	}
}

func TestDetuneRaisesOddSlots(t *testing.T) {
	if DetuneRatio(0) != 1 {
		t.Errorf("Expected no detune at 0, got %f", DetuneRatio(0))
	}
	want := math.Pow(2, MaxDetuneCents/1200)
	if math.Abs(DetuneRatio(1)-want) > 1e-12 {
		t.Errorf("Expected ratio %f at full detune, got %f", want, DetuneRatio(1))
	}

	p := NewPool(2, testRate, DefaultSustainLevel)
	a := NewAllocator(p)
	a.NoteOn(69, 100) // slot 1
	a.NoteOn(69, 100) // slot 0
	p.Tune(1)
	if got := p.Voice(0).osc.Frequency(); got != 440 {
		t.Errorf("Expected even slot at 440 Hz, got %f", got)
	}
	if got := p.Voice(1).osc.Frequency(); math.Abs(got-440*want) > 1e-9 {
		t.Errorf("Expected odd slot at %f Hz, got %f", 440*want, got)
	}
}

func TestCursorReadableFromAnotherGoroutine(t *testing.T) {
	p := NewPool(6, testRate, DefaultSustainLevel)
	a := NewAllocator(p)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if c := a.Cursor(); c < 0 || c >= p.Len() {
				t.Errorf("Expected cursor in [0,%d), got %d", p.Len(), c)
				return
			}
		}
	}()
	for i := 0; i < 1000; i++ {
		a.NoteOn(uint8(40+i%40), 100) //nolint:gosec // bounded
	}
	<-done

	a.NoteOn(60, 100)
	a.NoteOn(61, 100)
	want := (1000 + 2) % p.Len()
	if a.Cursor() != want {
		t.Errorf("Expected cursor %d, got %d", want, a.Cursor())
	}
}
