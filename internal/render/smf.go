package render

import (
	"fmt"
	"slices"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/icco/hathor/internal/control"
	"github.com/icco/hathor/internal/midi"
)

// DefaultBPM applies when a file carries no tempo.
const DefaultBPM = 120.0

// TimedEvent is a note event at an offset from the start of the file.
type TimedEvent struct {
	At    time.Duration
	Event control.Event
}

// Score is the note content of a MIDI file.
type Score struct {
	BPM    float64
	Events []TimedEvent
	Length time.Duration
}

// ReadSMF loads the note events of every track in the file at path.
func ReadSMF(path string) (Score, error) {
	rd, err := smf.ReadFile(path)
	if err != nil {
		return Score{}, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return FromSMF(rd)
}

// FromSMF converts a parsed file. Only metric time formats are supported,
// and the first tempo holds for the whole file.
func FromSMF(rd *smf.SMF) (Score, error) {
	mt, ok := rd.TimeFormat.(smf.MetricTicks)
	if !ok {
		return Score{}, fmt.Errorf("unsupported MIDI time format %v", rd.TimeFormat)
	}

	// TODO: follow tempo changes after the first one.
	score := Score{BPM: DefaultBPM}
	if tempoChanges := rd.TempoChanges(); len(tempoChanges) > 0 && tempoChanges[0].BPM > 0 {
		score.BPM = tempoChanges[0].BPM
	}

	type tickEvent struct {
		tick uint64
		ev   control.Event
	}
	var events []tickEvent
	var last uint64

	for _, track := range rd.Tracks {
		var tick uint64
		for _, msg := range track {
			tick += uint64(msg.Delta)
			decoded, ok := midi.Decode(msg.Message)
			if ok && !decoded.IsController {
				events = append(events, tickEvent{tick: tick, ev: decoded.Event})
			}
		}
		last = max(last, tick)
	}

	slices.SortStableFunc(events, func(a, b tickEvent) int {
		switch {
		case a.tick < b.tick:
			return -1
		case a.tick > b.tick:
			return 1
		}
		return 0
	})

	toDuration := func(ticks uint64) time.Duration {
		return mt.Duration(score.BPM, uint32(ticks))
	}
	score.Events = make([]TimedEvent, len(events))
	for i, e := range events {
		score.Events[i] = TimedEvent{At: toDuration(e.tick), Event: e.ev}
	}
	score.Length = toDuration(last)
	return score, nil
}
