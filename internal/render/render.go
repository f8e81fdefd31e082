// Package render plays a MIDI file through the engine offline and writes the
// result as a wave file.
package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/icco/hathor/internal/config"
	"github.com/icco/hathor/internal/control"
	"github.com/icco/hathor/internal/engine"
	"github.com/icco/hathor/internal/params"
	"github.com/icco/hathor/internal/voice"
)

// ErrNegativeTail is returned for a tail shorter than zero.
var ErrNegativeTail = errors.New("render: tail must not be negative")

// Render runs score through a fresh engine built from cfg, reading the panel
// from inputs, and returns interleaved stereo samples. Rendering continues
// for tail after the last event. Events are applied at control ticks, which
// fall every cfg.ControlBlocks blocks; events left over when the audio ends
// are dispatched by a final tick. opts configure the control loop.
func Render(cfg config.Config, inputs control.Inputs, score Score, tail time.Duration, opts ...control.Option) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tail < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeTail, tail)
	}

	sr := float64(cfg.SampleRate)
	store := params.NewStore()
	pool := voice.NewPool(cfg.Voices, sr, cfg.SustainLevel)
	eng, err := engine.New(store, pool, sr)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	queue := control.NewQueue(cfg.QueueSize)
	opts = append([]control.Option{control.WithCutoffCurve(cfg.CutoffCurve)}, opts...)
	loop := control.NewLoop(store, voice.NewAllocator(pool), inputs, queue, opts...)

	blockSamples := cfg.BlockSize * 2
	total := time.Duration(0)
	if score.Length > 0 {
		total = score.Length
	}
	total += tail
	frames := int(total.Seconds() * sr)
	blocks := (frames + cfg.BlockSize - 1) / cfg.BlockSize
	out := make([]float32, blocks*blockSamples)

	next := 0
	enqueue := func(until time.Duration) {
		for next < len(score.Events) && score.Events[next].At <= until {
			if !queue.Push(score.Events[next].Event) {
				loop.Tick()
				continue
			}
			next++
		}
		loop.Tick()
	}

	for b := 0; b < blocks; b++ {
		if b%cfg.ControlBlocks == 0 {
			enqueue(time.Duration(float64(b*cfg.BlockSize) / sr * float64(time.Second)))
		}
		eng.Process(out[b*blockSamples : (b+1)*blockSamples])
	}
	if next < len(score.Events) {
		enqueue(score.Events[len(score.Events)-1].At)
	}
	return out, nil
}
